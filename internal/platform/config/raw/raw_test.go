package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_FORMAT", " json ")
	t.Setenv("SERVICE", " registrygate ")

	root := New()
	log := root.Prefix("LOG_")

	tests := []struct {
		name string
		conf Conf
		key  string
		def  string
		want string
	}{
		{name: "root", conf: root, key: "SERVICE", def: "x", want: "registrygate"},
		{name: "prefixed", conf: log, key: "FORMAT", def: "x", want: "json"},
		{name: "missing", conf: log, key: "MISSING", def: "console", want: "console"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conf.Get(tt.key, tt.def); got != tt.want {
				t.Fatalf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("LOG_")
	for k, v := range map[string]string{"T1": "true", "T2": "1", "T3": "YES", "T4": " on ", "F1": "false", "F2": "nah"} {
		t.Setenv("LOG_"+k, v)
	}

	tests := []struct {
		key  string
		def  bool
		want bool
	}{
		{"T1", false, true},
		{"T2", false, true},
		{"T3", false, true},
		{"T4", false, true},
		{"F1", true, false},
		{"F2", true, false},
		{"MISSING", true, true},
		{"MISSING", false, false},
	}
	for _, tt := range tests {
		if got := c.GetBool(tt.key, tt.def); got != tt.want {
			t.Fatalf("GetBool(%q, %v) = %v, want %v", tt.key, tt.def, got, tt.want)
		}
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("LOG_")
	t.Setenv("LOG_OK", "42")
	t.Setenv("LOG_WS", "  7  ")
	t.Setenv("LOG_BAD", "12x")
	t.Setenv("LOG_NEG", "-5")

	tests := []struct {
		key       string
		def, want int
	}{
		{"OK", 0, 42},
		{"WS", 1, 7},
		{"BAD", 9, 9},
		{"NEG", 3, 3},
		{"MISSING", 11, 11},
	}
	for _, tt := range tests {
		if got := c.GetInt(tt.key, tt.def); got != tt.want {
			t.Fatalf("GetInt(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}
