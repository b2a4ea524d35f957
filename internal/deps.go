package internal

import (
	"bookswap/exchange-api/internal/mail"
	"bookswap/exchange-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	DB     *gorm.DB
	Argon  *security.ArgonHash
	Mailer mail.Mailer
}
