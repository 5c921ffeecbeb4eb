package greeting

import (
	"context"
	"os"
	"testing"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestGreet(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unset", map[string]string{}, "Hello, World!"},
		{"set", map[string]string{TargetEnv: "Ada"}, "Hello, Ada!"},
		{"empty treated as unset", map[string]string{TargetEnv: ""}, "Hello, World!"},
		{"whitespace kept verbatim", map[string]string{TargetEnv: " "}, "Hello,  !"},
		{"unicode", map[string]string{TargetEnv: "Åsa 🌍"}, "Hello, Åsa 🌍!"},
		{"other variables ignored", map[string]string{"GREETING": "Bob"}, "Hello, World!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEnvService(mapLookup(tt.env))
			if got := svc.Greet(context.Background()); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGreetReadsLookupOnEveryCall(t *testing.T) {
	env := map[string]string{}
	svc := NewEnvService(mapLookup(env))

	for _, name := range []string{"Ada", "Grace", ""} {
		env[TargetEnv] = name
		want := "Hello, " + name + "!"
		if name == "" {
			want = "Hello, World!"
		}
		if got := svc.Greet(context.Background()); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestGreetWithProcessEnvironment(t *testing.T) {
	t.Setenv(TargetEnv, "Process")
	svc := NewEnvService(os.LookupEnv)
	if got := svc.Greet(context.Background()); got != "Hello, Process!" {
		t.Fatalf("expected Hello, Process!, got %q", got)
	}
}

func TestTargetNilLookup(t *testing.T) {
	if got := Target(nil); got != DefaultTarget {
		t.Fatalf("expected %q, got %q", DefaultTarget, got)
	}
}

func TestStaticService(t *testing.T) {
	if got := (StaticService{Name: "Ada"}).Greet(context.Background()); got != "Hello, Ada!" {
		t.Fatalf("unexpected greeting %q", got)
	}
	if got := (StaticService{}).Greet(context.Background()); got != "Hello, World!" {
		t.Fatalf("unexpected greeting %q", got)
	}
}
