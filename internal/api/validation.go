package api

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidEmail = errors.New("e-mail inválido")
	ErrInvalidCPF   = errors.New("CPF deve ter 11 dígitos")
	ErrInvalidCEP   = errors.New("CEP deve ter 8 dígitos")
	ErrPhoneRequired = errors.New("telefone principal obrigatório")
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmailRegex valida formato de e-mail com o regex padrão do backend.
func ValidateEmailRegex(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrInvalidEmail
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeCPF remove máscara e valida 11 dígitos. Retorna só os números.
func NormalizeCPF(cpf string) (string, error) {
	d := onlyDigits(cpf)
	if len(d) != 11 {
		return "", ErrInvalidCPF
	}
	return d, nil
}

// ValidateCEP aceita com ou sem máscara, exige 8 dígitos. Retorna só os números.
func ValidateCEP(cep string) (string, error) {
	d := onlyDigits(cep)
	if len(d) != 8 {
		return "", ErrInvalidCEP
	}
	return d, nil
}

// ValidatePhone exige ao menos o telefone principal, com 10 ou 11 dígitos.
func ValidatePhone(phone string) (string, error) {
	d := onlyDigits(phone)
	if len(d) < 10 || len(d) > 11 {
		return "", ErrPhoneRequired
	}
	return d, nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatDateBR converte aaaa-mm-dd para dd/mm/aaaa; vazio quando inválida.
func formatDateBR(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return ""
	}
	return t.Format("02/01/2006")
}
