package credits

import (
	"database/sql"

	"github.com/jasdeace/webapp/internal/repos/credits"
)

var _ credits.Balances = (*balancesRepo)(nil)

type balancesRepo struct{ db *sql.DB }

func New(db *sql.DB) *balancesRepo {
	return &balancesRepo{db: db}
}
