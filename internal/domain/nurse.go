package domain

// Nurse represents a caregiver with login credentials / Représente un soignant avec des identifiants
type Nurse struct {
	Person
	ID           int64
	PhoneNumber  string
	PasswordHash string // bcrypt hash, never the plaintext / Hash bcrypt, jamais le mot de passe en clair
}

// Account converts the nurse to its authenticated view / Convertit le soignant en vue authentifiée
func (n *Nurse) Account() *StaffAccount {
	return &StaffAccount{Person: n.Person, ID: n.ID, Privileged: false}
}
