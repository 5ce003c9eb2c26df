package user

import (
	"os"
	"reflect"
	"strings"
	"testing"
)

// Every db-tagged field must have a column in the users DDL, otherwise the
// SELECT * struct scans in the repository fail at runtime for every row.
func TestUserColumnsMatchSchema(t *testing.T) {
	ddl, err := os.ReadFile("../../../migrations/0001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}

	start := strings.Index(string(ddl), "CREATE TABLE users (")
	if start < 0 {
		t.Fatal("users table not found in migration")
	}
	block := string(ddl)[start:]
	end := strings.Index(block, ");")
	if end < 0 {
		t.Fatal("users table block not terminated")
	}
	block = block[:end]

	columns := make(map[string]bool)
	for _, line := range strings.Split(block, "\n")[1:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		columns[fields[0]] = true
	}

	typ := reflect.TypeOf(User{})
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		if !columns[tag] {
			t.Errorf("struct column %q has no column in the users DDL", tag)
		}
	}
}
