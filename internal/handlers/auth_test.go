package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"devagram/internal/config"
	"devagram/internal/identity"
)

func multipartRequest(t *testing.T, route string, fields map[string]string, filename string) events.APIGatewayV2HTTPRequest {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte("imagebytes"))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return events.APIGatewayV2HTTPRequest{
		RouteKey: route,
		Headers:  map[string]string{"Content-Type": w.FormDataContentType()},
		Body:     buf.String(),
	}
}

func jsonRequest(route string, body any) events.APIGatewayV2HTTPRequest {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPRequest{
		RouteKey: route,
		Headers:  map[string]string{"content-type": "application/json"},
		Body:     string(b),
	}
}

func decodeBody(t *testing.T, resp events.APIGatewayV2HTTPResponse) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &m); err != nil {
		t.Fatalf("body %q: %v", resp.Body, err)
	}
	return m
}

func assertMessage(t *testing.T, resp events.APIGatewayV2HTTPResponse, status int, key, msg string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, resp.Body)
	}
	if got := decodeBody(t, resp)[key]; got != msg {
		t.Fatalf("%s = %v, want %q", key, got, msg)
	}
}

var validRegistration = map[string]string{
	"email":    "ana@devagram.com",
	"password": "Senha@123",
	"name":     "Ana",
}

func TestRegisterWithoutFile(t *testing.T) {
	svc := newFakeServices()
	h := NewAuthHandler(svc, testConfig(t), testLogger())

	resp, err := h.Handle(context.Background(), multipartRequest(t, "POST /register", validRegistration, ""))
	if err != nil {
		t.Fatal(err)
	}
	assertMessage(t, resp, 200, "msg", "Usuario cadastrado com sucesso!")

	if len(svc.identity.signUps) != 1 || len(svc.images.saved) != 0 {
		t.Fatalf("signups=%v uploads=%v", svc.identity.signUps, svc.images.saved)
	}
	if len(svc.users.created) != 1 {
		t.Fatalf("created = %d", len(svc.users.created))
	}
	u := svc.users.created[0]
	if u.CognitoID != "sub-new" || u.Avatar != "" || u.Name != "Ana" {
		t.Fatalf("user = %+v", u)
	}
	if len(svc.events.published) != 1 || svc.events.published[0].Type != "user.registered" {
		t.Fatalf("events = %+v", svc.events.published)
	}
}

func TestRegisterWithAvatar(t *testing.T) {
	svc := newFakeServices()
	h := NewAuthHandler(svc, testConfig(t), testLogger())

	resp, _ := h.Handle(context.Background(), multipartRequest(t, "POST /register", validRegistration, "eu.PNG"))
	assertMessage(t, resp, 200, "msg", "Usuario cadastrado com sucesso!")

	if len(svc.images.saved) != 1 || svc.images.saved[0] != "avatars/avatar-id.PNG" {
		t.Fatalf("uploads = %v", svc.images.saved)
	}
	if svc.users.created[0].Avatar != "avatar-id.PNG" {
		t.Fatalf("avatar = %q", svc.users.created[0].Avatar)
	}
}

func TestRegisterBase64Body(t *testing.T) {
	svc := newFakeServices()
	h := NewAuthHandler(svc, testConfig(t), testLogger())

	req := multipartRequest(t, "POST /register", validRegistration, "")
	req.Body = base64.StdEncoding.EncodeToString([]byte(req.Body))
	req.IsBase64Encoded = true

	resp, _ := h.Handle(context.Background(), req)
	assertMessage(t, resp, 200, "msg", "Usuario cadastrado com sucesso!")
}

func TestRegisterJSONBody(t *testing.T) {
	svc := newFakeServices()
	h := NewAuthHandler(svc, testConfig(t), testLogger())

	resp, _ := h.Handle(context.Background(), jsonRequest("POST /register", validRegistration))
	assertMessage(t, resp, 200, "msg", "Usuario cadastrado com sucesso!")
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name     string
		fields   map[string]string
		filename string
		want     string
	}{
		{"bad email and password", map[string]string{"email": "ana@", "password": "x", "name": "Ana"}, "", "Email invalido"},
		{"weak password", map[string]string{"email": "ana@devagram.com", "password": "senha123", "name": "Ana"}, "", "Senha invalida"},
		{"short name", map[string]string{"email": "ana@devagram.com", "password": "Senha@123", "name": " A "}, "", "Nome invalido"},
		{"bad extension", validRegistration, "eu.bmp", "Extensao informada do arquivo nao e valida"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := newFakeServices()
			h := NewAuthHandler(svc, testConfig(t), testLogger())

			resp, _ := h.Handle(context.Background(), multipartRequest(t, "POST /register", c.fields, c.filename))
			assertMessage(t, resp, 400, "error", c.want)
			if len(svc.identity.signUps) != 0 {
				t.Fatal("sign-up must not be called on invalid input")
			}
		})
	}
}

func TestRegisterEmptyBody(t *testing.T) {
	h := NewAuthHandler(newFakeServices(), testConfig(t), testLogger())
	resp, _ := h.Handle(context.Background(), events.APIGatewayV2HTTPRequest{RouteKey: "POST /register"})
	assertMessage(t, resp, 400, "error", "Parametros de entrada invalidos")
}

func TestRegisterMissingEnvNamesFirstKey(t *testing.T) {
	svc := newFakeServices()
	cfg := testConfig(t, config.AvatarBucket, "", config.UserTable, "")
	h := NewAuthHandler(svc, cfg, testLogger())

	resp, _ := h.Handle(context.Background(), multipartRequest(t, "POST /register", validRegistration, ""))
	assertMessage(t, resp, 500, "error", "Env AVATAR_BUCKET nao encontrada")
	if len(svc.identity.signUps) != 0 {
		t.Fatal("no collaborator call expected")
	}
}

func TestRegisterSignUpFailure(t *testing.T) {
	svc := newFakeServices()
	svc.identity.err = errors.New("UsernameExistsException")
	h := NewAuthHandler(svc, testConfig(t), testLogger())

	resp, _ := h.Handle(context.Background(), multipartRequest(t, "POST /register", validRegistration, ""))
	assertMessage(t, resp, 500, "error", "Erro ao cadastrar usuario! tente novamente ou contacte o administrador do sistema")
	if len(svc.users.created) != 0 {
		t.Fatal("user must not be created")
	}
}

func TestConfirmEmail(t *testing.T) {
	cases := []struct {
		body   map[string]string
		status int
		key    string
		want   string
	}{
		{map[string]string{"email": "ana@devagram.com", "code": "123456"}, 200, "msg", "Usuario verificado com sucesso!"},
		{map[string]string{"email": "ana", "code": "123456"}, 400, "error", "Email invalido"},
		{map[string]string{"email": "ana@devagram.com", "code": "12345"}, 400, "error", "Codigo invalido"},
	}
	for _, c := range cases {
		h := NewAuthHandler(newFakeServices(), testConfig(t), testLogger())
		resp, _ := h.Handle(context.Background(), jsonRequest("POST /confirm-email", c.body))
		assertMessage(t, resp, c.status, c.key, c.want)
	}
}

func TestForgotPassword(t *testing.T) {
	svc := newFakeServices()
	h := NewAuthHandler(svc, testConfig(t), testLogger())

	resp, _ := h.Handle(context.Background(), jsonRequest("POST /forgot-password", map[string]string{"email": "ana@devagram.com"}))
	assertMessage(t, resp, 200, "msg", "Solicitacao de troca de senha enviada com sucesso!")
	if len(svc.identity.forgot) != 1 {
		t.Fatalf("forgot = %v", svc.identity.forgot)
	}
}

func TestChangePasswordChecksCodeBeforePassword(t *testing.T) {
	svc := newFakeServices()
	h := NewAuthHandler(svc, testConfig(t), testLogger())

	resp, _ := h.Handle(context.Background(), jsonRequest("POST /change-password", map[string]string{
		"email": "ana@devagram.com", "code": "1", "password": "fraca",
	}))
	assertMessage(t, resp, 400, "error", "Codigo invalido")

	resp, _ = h.Handle(context.Background(), jsonRequest("POST /change-password", map[string]string{
		"email": "ana@devagram.com", "code": "123456", "password": "Nova@Senha1",
	}))
	assertMessage(t, resp, 200, "msg", "Senha alterada com sucesso!")
	if len(svc.identity.changed) != 1 {
		t.Fatalf("changed = %v", svc.identity.changed)
	}
}

func TestLogin(t *testing.T) {
	svc := newFakeServices()
	svc.identity.session = identity.Session{Email: "ana@devagram.com", Token: "tok", RefreshToken: "ref"}
	h := NewLoginHandler(svc, testConfig(t), testLogger())

	resp, _ := h.Handle(context.Background(), jsonRequest("POST /login", map[string]string{"login": "ana@devagram.com", "password": "Senha@123"}))
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d body = %s", resp.StatusCode, resp.Body)
	}
	body := decodeBody(t, resp)
	if body["token"] != "tok" || body["refreshToken"] != "ref" || body["email"] != "ana@devagram.com" {
		t.Fatalf("body = %v", body)
	}
}

func TestLoginValidation(t *testing.T) {
	h := NewLoginHandler(newFakeServices(), testConfig(t), testLogger())

	resp, _ := h.Handle(context.Background(), jsonRequest("POST /login", map[string]string{"login": "ana@devagram.com"}))
	assertMessage(t, resp, 400, "error", "Parametros de entrada invalidos!")

	resp, _ = h.Handle(context.Background(), events.APIGatewayV2HTTPRequest{RouteKey: "POST /login"})
	assertMessage(t, resp, 400, "error", "Parametros de entrada invalidos")
}

func TestLoginFailure(t *testing.T) {
	svc := newFakeServices()
	svc.identity.err = errors.New("NotAuthorizedException")
	h := NewLoginHandler(svc, testConfig(t), testLogger())

	resp, _ := h.Handle(context.Background(), jsonRequest("POST /login", map[string]string{"login": "a@b.com", "password": "x"}))
	assertMessage(t, resp, 500, "error", "Erro ao autenticar usuario! tente novamente ou contacte o administrador do sistema")
}

func TestUnknownRoute(t *testing.T) {
	h := NewAuthHandler(newFakeServices(), testConfig(t), testLogger())
	resp, _ := h.Handle(context.Background(), events.APIGatewayV2HTTPRequest{RouteKey: "DELETE /register"})
	assertMessage(t, resp, 405, "error", "Metodo informado nao e valido")
}
