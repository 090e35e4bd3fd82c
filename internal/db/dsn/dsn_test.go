package dsn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bapti-church/bapti-web/internal/config"
	"github.com/bapti-church/bapti-web/internal/db/dsn"
)

func TestCreate(t *testing.T) {
	base := config.DB{
		Host:     "db.local",
		Port:     3306,
		User:     "bapti",
		Password: "pw",
		Name:     "church",
	}

	tests := []struct {
		name   string
		engine string
		extras string
		want   string
	}{
		{name: "mysql", engine: config.EngineMySQL, want: "bapti:pw@tcp(db.local:3306)/church"},
		{name: "mysql extras", engine: config.EngineMySQL, extras: "parseTime=True", want: "bapti:pw@tcp(db.local:3306)/church?parseTime=True"},
		{name: "postgres", engine: config.EnginePostgres, extras: "sslmode=disable", want: "postgres://bapti:pw@db.local:3306/church?sslmode=disable"},
		{name: "sqlite", engine: config.EngineSQLite, want: "church"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := base
			db.GormEngine = tt.engine
			db.Extras = tt.extras

			assert.Equal(t, tt.want, dsn.Create(&config.Config{DB: db}))
		})
	}
}
