package match

import "testing"

func newMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := New(DefaultOverrides())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestMatches(t *testing.T) {
	m := newMatcher(t)
	tests := []struct {
		a, b string
		want bool
	}{
		{"ABG", "ABG CORPORATE", true},
		{"GRUPO Adhemar", "Adhemar", true},
		{"Acme Ltda", "Beta Ltda", false},
		{"acme ltda", "ACME   LTDA", true},
		{"Acme Comercio", "Acme Industria", true}, // primeira palavra compartilhada
		{"", "Acme", false},
		{"GRUPO", "GRUPO", false}, // só o prefixo, sem nome
		{"Grupo Disep", "DISEP", true},
	}
	for _, tt := range tests {
		if got := m.Matches(tt.a, tt.b); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v; esperado %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMatchesSimetria(t *testing.T) {
	m := newMatcher(t)
	pares := [][2]string{
		{"ABG", "ABG CORPORATE"},
		{"GRUPO Adhemar", "Adhemar"},
		{"Acme Ltda", "Beta Ltda"},
		{"Grupo Disep", "DISEP"},
		{"", "x"},
	}
	for _, p := range pares {
		if m.Matches(p[0], p[1]) != m.Matches(p[1], p[0]) {
			t.Errorf("Matches não é simétrico para (%q, %q)", p[0], p[1])
		}
	}
}

func TestOverrides(t *testing.T) {
	m := newMatcher(t)
	if !m.MatchesOverride("Grupo Disep", "disep") {
		t.Error("override Grupo Disep deveria casar com disep")
	}
	if m.MatchesOverride("Grupo Disep", "Acme") {
		t.Error("override não deveria casar com Acme")
	}
	if got := m.CanonicalName("grupo disep"); got != "Grupo Disep" {
		t.Errorf("CanonicalName = %q; esperado Grupo Disep", got)
	}
	if got := m.CanonicalName("Acme"); got != "" {
		t.Errorf("CanonicalName(Acme) = %q; esperado vazio", got)
	}
}

func TestNewRejeitaRegexInvalida(t *testing.T) {
	if _, err := New([]Override{{Planilha: "(", Base: "x"}}); err == nil {
		t.Fatal("regex inválida deveria falhar na construção")
	}
}

func TestNormalizeGrupo(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Grupo Adhemar/Flávio", "adhemar / flávio"},
		{"Adhemar / Flávio", "adhemar / flávio"},
		{"  GRUPO  Acme ", "acme"},
	}
	for _, tt := range tests {
		if got := NormalizeGrupo(tt.in); got != tt.want {
			t.Errorf("NormalizeGrupo(%q) = %q; esperado %q", tt.in, got, tt.want)
		}
	}
}

func TestClosestCandidate(t *testing.T) {
	m := newMatcher(t)
	candidatos := []string{"ABG CORPORATE", "Beta Ltda", "Gama SA"}
	got := m.ClosestCandidate("ABG CORP", candidatos)
	if got != "ABG CORPORATE" {
		t.Errorf("ClosestCandidate = %q; esperado ABG CORPORATE", got)
	}
	// caixa não pode importar: o índice e a busca comparam em minúsculas
	if got := m.ClosestCandidate("abg corp", candidatos); got != "ABG CORPORATE" {
		t.Errorf("ClosestCandidate(minúsculas) = %q; esperado ABG CORPORATE", got)
	}
	if got := m.ClosestCandidate("x", nil); got != "" {
		t.Errorf("ClosestCandidate sem candidatos = %q; esperado vazio", got)
	}
}
