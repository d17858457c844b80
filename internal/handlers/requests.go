package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"devagram/internal/db"
	"devagram/internal/errs"
	"devagram/internal/storage"
)

const maxPartSize = 10 << 20

type registerRequest struct {
	Email    string `validate:"required,email_shape" msg:"Email invalido"`
	Password string `validate:"required,strong_password" msg:"Senha invalida"`
	Name     string `validate:"min_trim=2" msg:"Nome invalido"`
	Filename string `validate:"omitempty,image_name" msg:"Extensao informada do arquivo nao e valida"`
}

type confirmEmailRequest struct {
	Email string `json:"email" validate:"required,email_shape" msg:"Email invalido"`
	Code  string `json:"code" validate:"len=6" msg:"Codigo invalido"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email_shape" msg:"Email invalido"`
}

type changePasswordRequest struct {
	Email    string `json:"email" validate:"required,email_shape" msg:"Email invalido"`
	Code     string `json:"code" validate:"len=6" msg:"Codigo invalido"`
	Password string `json:"password" validate:"required,strong_password" msg:"Senha invalida"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required" msg:"Parametros de entrada invalidos!"`
	Password string `json:"password" validate:"required" msg:"Parametros de entrada invalidos!"`
}

// Empty name means "keep the current one".
type updateUserRequest struct {
	Name     string `validate:"omitempty,min_trim=2" msg:"Nome invalido"`
	Filename string `validate:"omitempty,image_name" msg:"Extensao informada do arquivo nao e valida"`
}

type createPostRequest struct {
	Description string `validate:"min_trim=5" msg:"Descricao invalida"`
	Filename    string `validate:"required,image_name" msg:"Extensao informada do arquivo nao e valida"`
}

type commentRequest struct {
	Coment string `json:"coment" validate:"min=2" msg:"Comentario invalido"`
}

// form is a decoded request body: multipart fields plus the optional "file"
// part, or the string members of a JSON object.
type form struct {
	values map[string]string
	file   *storage.File
}

func (f form) get(key string) string { return f.values[key] }

func (f form) filename() string {
	if f.file == nil {
		return ""
	}
	return f.file.Filename
}

func requestBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, errs.NewInvalidInput(msgInvalidParams)
	}
	return b, nil
}

func header(req events.APIGatewayV2HTTPRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// parseForm accepts multipart/form-data and, for clients that send no file,
// a JSON object.
func parseForm(req events.APIGatewayV2HTTPRequest) (form, error) {
	body, err := requestBody(req)
	if err != nil {
		return form{}, err
	}

	mediaType, params, _ := mime.ParseMediaType(header(req, "content-type"))
	if mediaType == "multipart/form-data" {
		return parseMultipart(body, params["boundary"])
	}

	raw := map[string]any{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return form{}, errs.NewInvalidInput(msgInvalidParams)
	}
	f := form{values: map[string]string{}}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			f.values[k] = s
		}
	}
	return f, nil
}

func parseMultipart(body []byte, boundary string) (form, error) {
	if boundary == "" {
		return form{}, errs.NewInvalidInput(msgInvalidParams)
	}

	f := form{values: map[string]string{}}
	r := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := r.NextPart()
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			return form{}, errs.NewInvalidInput(msgInvalidParams)
		}

		data, err := io.ReadAll(io.LimitReader(part, maxPartSize+1))
		if err != nil {
			return form{}, fmt.Errorf("read part %s: %w", part.FormName(), err)
		}
		if len(data) > maxPartSize {
			return form{}, errs.NewInvalidInput(msgInvalidParams)
		}

		if part.FormName() == "file" && part.FileName() != "" {
			f.file = &storage.File{
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Data:        data,
			}
			continue
		}
		f.values[part.FormName()] = string(data)
	}
}

func decodeJSON(req events.APIGatewayV2HTTPRequest, v any) error {
	body, err := requestBody(req)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errs.NewInvalidInput(msgInvalidParams)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errs.NewInvalidInput(msgInvalidParams)
	}
	return nil
}

// feedCursor reads the last key a client echoes back as query parameters.
// A user feed cursor needs id, userId and date; anything less is ignored.
func feedCursor(q map[string]string) *db.Cursor {
	c := db.Cursor{ID: q["id"], UserID: q["userId"], Date: q["date"]}
	if c.ID == "" || c.UserID == "" || c.Date == "" {
		return nil
	}
	return &c
}

func homeCursor(q map[string]string) *db.Cursor {
	if id := q["id"]; id != "" {
		return &db.Cursor{ID: id}
	}
	return nil
}
