package store

import "testing"

func TestMapColumnType(t *testing.T) {
	tests := []struct {
		name    string
		want    ColumnType
		wantErr bool
	}{
		{"INT64", ColInt8, false},
		{"INTEGER", ColInt8, false},
		{"bigint", ColInt8, false},
		{"INT", ColInt4, false},
		{"TEXT", ColText, false},
		{"varchar", ColText, false},
		{"BLOB", ColBytea, false},
		{"BYTEA", ColBytea, false},
		{"BOOLEAN", ColBool, false},
		// go-libsql reports no type metadata at all.
		{"", ColAny, false},
		{"REAL", 0, true},
		{"DATETIME", 0, true},
	}

	for _, tt := range tests {
		got, err := mapColumnType(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("mapColumnType(%q) should fail", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("mapColumnType(%q) error = %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("mapColumnType(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}
