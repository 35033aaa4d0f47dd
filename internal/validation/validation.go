// Package validation holds the registration form field checks and display
// masks for Brazilian documents (CPF, RG, CEP, OAB).
package validation

import (
	"regexp"
	"strings"
)

var (
	nonDigits  = regexp.MustCompile(`\D`)
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Error messages surfaced to the console UI.
const (
	MsgEmail       = "Email inválido"
	MsgPhone       = "Telefone inválido"
	MsgCPF         = "CPF inválido"
	MsgRG          = "RG inválido"
	MsgCEP         = "CEP inválido"
	MsgPassword    = "Senha deve ter no mínimo 8 caracteres"
	MsgState       = "Estado deve ter 2 caracteres"
	MsgOABNumber   = "Número da OAB inválido"
	MsgRequired    = "Campo obrigatório"
	MsgSpecialties = "Selecione pelo menos uma especialidade"
)

func digits(s string) string { return nonDigits.ReplaceAllString(s, "") }

func Email(email string) bool { return emailShape.MatchString(email) }

func Phone(phone string) bool {
	n := len(digits(phone))
	return n >= 10 && n <= 11
}

func CPF(cpf string) bool { return len(digits(cpf)) == 11 }

func RG(rg string) bool {
	n := len(digits(rg))
	return n >= 7 && n <= 9
}

func CEP(cep string) bool { return len(digits(cep)) == 8 }

func Password(password string) bool { return len(password) >= 8 }

func State(state string) bool { return len(state) == 2 }

func OABNumber(number string) bool {
	n := len(digits(number))
	return n >= 6 && n <= 8
}

// MaskPhone formats a 10 or 11 digit phone as (dd) nnnn-nnnn.
func MaskPhone(value string) string {
	d := digits(value)
	switch {
	case len(d) == 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	case len(d) == 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	default:
		return d
	}
}

func MaskCPF(value string) string {
	d := digits(value)
	if len(d) != 11 {
		return d
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

func MaskRG(value string) string {
	d := digits(value)
	if len(d) != 9 {
		return d
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "-" + d[8:]
}

func MaskCEP(value string) string {
	d := digits(value)
	if len(d) != 8 {
		return d
	}
	return d[:5] + "-" + d[5:]
}

// CheckRegistration applies the per-field checks enforced before a profile
// is submitted. It returns a message per offending field; an empty map
// means the profile is valid.
func CheckRegistration(name, email, phone, cpf, rg, cep, state, oabNumber, oabState, password string, specialties []string) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(name) == "" {
		errs["name"] = MsgRequired
	}
	if !Email(email) {
		errs["email"] = MsgEmail
	}
	if !Phone(phone) {
		errs["phone"] = MsgPhone
	}
	if !CPF(cpf) {
		errs["cpf"] = MsgCPF
	}
	if !RG(rg) {
		errs["rg"] = MsgRG
	}
	if !CEP(cep) {
		errs["zip_code"] = MsgCEP
	}
	if !State(state) {
		errs["state"] = MsgState
	}
	if !OABNumber(oabNumber) {
		errs["oab_number"] = MsgOABNumber
	}
	if !State(oabState) {
		errs["oab_state"] = MsgState
	}
	if !Password(password) {
		errs["password"] = MsgPassword
	}
	if len(specialties) == 0 {
		errs["specialties"] = MsgSpecialties
	}
	return errs
}
