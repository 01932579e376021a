package domain

// Person provides the shared name fields for people-like records / Fournit les champs de nom communs
type Person struct {
	FirstName string
	Surname   string
}

// FullName returns "Surname, FirstName" for display / Retourne "Nom, Prénom" pour l'affichage
func (p Person) FullName() string {
	return p.Surname + ", " + p.FirstName
}

// StaffAccount is the result of a successful authentication lookup.
// Privileged marks admin accounts; no role hierarchy exists beyond that.
type StaffAccount struct {
	Person
	ID         int64
	Privileged bool
}
