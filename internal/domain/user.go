package domain

import (
	"strings"
	"unicode"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLawyer    Role = "lawyer"
	RoleIntern    Role = "intern"
	RoleSecretary Role = "secretary"
	RoleClient    Role = "client"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLawyer, RoleIntern, RoleSecretary, RoleClient:
		return true
	}
	return false
}

// Label returns the display name used by the console UI.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleLawyer:
		return "Advogado"
	case RoleIntern:
		return "Estagiário"
	case RoleSecretary:
		return "Secretário"
	case RoleClient:
		return "Cliente"
	default:
		return "Usuário"
	}
}

// User is the compact identity blob returned by the remote API on login.
// It is cached for display only and is never an authorization signal.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
}

type PersonalInfo struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	CPF          string  `json:"cpf"`
	RG           string  `json:"rg"`
	BirthDate    string  `json:"birth_date"`
	Address      Address `json:"address"`
	ProfileImage string  `json:"profile_image,omitempty"`
}

type ProfessionalInfo struct {
	OABNumber    string   `json:"oab_number"`
	OABState     string   `json:"oab_state"`
	Specialties  []string `json:"specialties"`
	HireDate     string   `json:"hire_date"`
	Department   string   `json:"department"`
	SupervisorID string   `json:"supervisor_id"`
}

// RegisterProfile is the structured payload sent to the remote API when a
// new professional signs up.
type RegisterProfile struct {
	PersonalInfo     PersonalInfo     `json:"personal_info"`
	ProfessionalInfo ProfessionalInfo `json:"professional_info"`
	Role             Role             `json:"role"`
	Password         string           `json:"password"`
}

// Initials derives the one-or-two letter avatar initials from a full name.
func Initials(name string) string {
	initials := make([]rune, 0, 2)
	for _, word := range strings.Fields(name) {
		initials = append(initials, unicode.ToUpper([]rune(word)[0]))
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}
