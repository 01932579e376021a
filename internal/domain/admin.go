package domain

// Admin represents an administrator account / Représente un compte administrateur
type Admin struct {
	Person
	ID           int64
	PasswordHash string
}

// Account converts the admin to its authenticated view / Convertit l'administrateur en vue authentifiée
func (a *Admin) Account() *StaffAccount {
	return &StaffAccount{Person: a.Person, ID: a.ID, Privileged: true}
}
