package seed

import (
	"context"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/auth"
)

// Run cria a usuária ADMIN inicial quando o banco está vazio. Idempotente:
// com qualquer usuário já cadastrado não faz nada.
func Run(ctx context.Context, db *gorm.DB) error {
	var n int
	if err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM staff_users").Scan(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	adminHash, err := auth.HashPassword("Admin123!")
	if err != nil {
		return err
	}
	adminID := uuid.New()
	if err := db.WithContext(ctx).Exec(`
		INSERT INTO staff_users (id, full_name, cpf, email, password_hash, role, status)
		VALUES (?, 'Administradora', '00000000000', 'admin@gerencia.local', ?, ?, 'ACTIVE')
	`, adminID, adminHash, auth.RoleAdmin).Error; err != nil {
		return err
	}
	log.Printf("seed: usuária ADMIN inicial criada (cpf 00000000000, troque a senha)")
	return nil
}
