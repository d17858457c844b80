package handlers

import (
	"errors"
	"fmt"
	"testing"

	"devagram/internal/errs"
)

func TestFailMapsErrorKinds(t *testing.T) {
	op := operation{name: "test_op", failure: "Erro ao testar!"}
	cases := []struct {
		name   string
		err    error
		status int
		want   string
	}{
		{"wrapped not found", fmt.Errorf("load: %w", errs.NewNotFound("Usuario nao encontrado")), 400, "Usuario nao encontrado"},
		{"invalid input", errs.NewInvalidInput("Email invalido"), 400, "Email invalido"},
		{"missing env", errs.NewConfigurationMissing("Env USER_TABLE nao encontrada"), 500, "Env USER_TABLE nao encontrada"},
		{"collaborator", errors.New("dynamodb: throttled"), 500, "Erro ao testar!"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := fail(testLogger(), op, c.err)
			assertMessage(t, resp, c.status, "error", c.want)
		})
	}
}
