package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/solidcoredata/tablechain/schema"
)

func validTable() schema.Table {
	return schema.Table{
		Name: "orders",
		Fields: []schema.Field{
			{Name: "id", Type: schema.Integer, PrimKey: true},
		},
	}
}

func TestValidateRequiresWorkDir(t *testing.T) {
	cfg := Config{Tables: []schema.Table{validTable()}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresAtLeastOneTable(t *testing.T) {
	cfg := Config{WorkDir: "/tmp/x"}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDuplicateTableNames(t *testing.T) {
	cfg := Config{WorkDir: "/tmp/x", Tables: []schema.Table{validTable(), validTable()}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvalidMaxBlocks(t *testing.T) {
	bad := 0
	cfg := Config{WorkDir: "/tmp/x", Tables: []schema.Table{validTable()}, Truncation: Truncation{MaxBlocks: &bad}}
	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	good := 10
	age := 24 * time.Hour
	cfg := Config{
		WorkDir: "/tmp/x",
		Tables:  []schema.Table{validTable()},
		Truncation: Truncation{
			MaxBlocks: &good,
			MaxAge:    &age,
		},
	}
	assert.NoError(t, cfg.Validate())
}

func TestTableNames(t *testing.T) {
	cfg := Config{Tables: []schema.Table{validTable(), {Name: "users"}}}
	assert.Equal(t, []string{"orders", "users"}, cfg.TableNames())
}
