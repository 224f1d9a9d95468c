package api

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/alerts"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/cache"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/config"
	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/ibge"
)

type Handler struct {
	Pool   *pgxpool.Pool
	Cfg    *config.Config
	Cache  *cache.TTL
	Alerts *alerts.Bus
	IBGE   *ibge.Client

	hashPassword              func(string) (string, error)
	sendFormLinkEmail         func(to, guardianName, patientName, formURL string, validDays int) error
	sendReferralAssignedEmail func(to, assistantName, patientName, reportURL string) error
}

func (h *Handler) SetHashPassword(fn func(string) (string, error)) { h.hashPassword = fn }
func (h *Handler) SetSendFormLinkEmail(fn func(to, guardianName, patientName, formURL string, validDays int) error) {
	h.sendFormLinkEmail = fn
}
func (h *Handler) SetSendReferralAssignedEmail(fn func(to, assistantName, patientName, reportURL string) error) {
	h.sendReferralAssignedEmail = fn
}

// alert publica no stream global quando o bus está ligado.
func (h *Handler) alert(sev alerts.Severity, msg string) {
	if h.Alerts != nil {
		h.Alerts.Publish(sev, msg)
	}
}
