package gateway

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// entity describes one CRUD family. Every family maps onto four routes
// backed by stored procedures named after the family: add_or_edit_<x>,
// <x>_list_get, <x>_get and remove_<x>.
type entity struct {
	name       string   // route segment, dashes allowed
	readLevel  int
	writeLevel int
	imageKind  string   // empty when the family has no image column
	fields     []string // ordered form fields forwarded to add_or_edit_<x>
}

var entities = []entity{
	{
		name: "product", readLevel: 1, writeLevel: 2, imageKind: "product",
		fields: []string{"code", "name", "category", "price", "unit", "description"},
	},
	{
		name: "roll", readLevel: 1, writeLevel: 2, imageKind: "roll",
		fields: []string{"code", "product_code", "length", "width", "location"},
	},
	{
		name: "bill", readLevel: 1, writeLevel: 2,
		fields: []string{"code", "entity_code", "total", "advance", "status", "tailor", "due_date", "note"},
	},
	{
		name: "expense", readLevel: 1, writeLevel: 3,
		fields: []string{"code", "title", "amount", "category", "spent_at", "note"},
	},
	{
		name: "supplier", readLevel: 1, writeLevel: 2,
		fields: []string{"code", "name", "phone", "address", "note"},
	},
	{
		name: "entity", readLevel: 1, writeLevel: 2, imageKind: "entity",
		fields: []string{"code", "name", "kind", "phone", "address", "note"},
	},
	{
		name: "purchase", readLevel: 1, writeLevel: 2,
		fields: []string{"code", "supplier_code", "total", "purchased_at", "note"},
	},
	{
		name: "purchase-item", readLevel: 1, writeLevel: 2,
		fields: []string{"code", "purchase_code", "product_code", "quantity", "unit_price"},
	},
	{
		name: "user", readLevel: 1, writeLevel: 3, imageKind: "user",
		fields: []string{"code", "username", "full_name", "level", "phone", "password_hash"},
	},
}

// proc converts the route segment to the stored-procedure identifier.
func (e entity) proc() string {
	return strings.ReplaceAll(e.name, "-", "_")
}

// handleAddOrEdit forwards the form fields to add_or_edit_<x> and, when
// the request carries an image envelope, processes it against the code the
// procedure returned.
func (s *Service) handleAddOrEdit(e entity) http.HandlerFunc {
	placeholders := make([]string, len(e.fields))
	for i := range e.fields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sql := fmt.Sprintf("SELECT add_or_edit_%s(%s)", e.proc(), strings.Join(placeholders, ", "))

	return func(w http.ResponseWriter, r *http.Request) {
		// 16 MiB covers the largest accepted image plus the form fields.
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			if err := r.ParseForm(); err != nil {
				s.writeError(w, r, fmt.Errorf("%w: invalid form body", ErrBadRequest))
				return
			}
		}

		args := make([]any, len(e.fields))
		for i, field := range e.fields {
			// Clients submit a plain password; only the hash crosses into SQL.
			if field == "password_hash" {
				hash, err := hashedPassword(r)
				if err != nil {
					s.writeError(w, r, err)
					return
				}
				args[i] = hash
				continue
			}
			args[i] = nullableForm(r, field)
		}

		var code string
		if err := s.queryRow(r.Context(), sql, args, &code); err != nil {
			s.writeError(w, r, err)
			return
		}

		result := map[string]any{"result": true, "code": code}
		if e.imageKind != "" {
			url, err := s.processImage(r, e.imageKind, code)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			if url != "" {
				result["image_url"] = url
			}
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Service) handleList(e entity) http.HandlerFunc {
	sql := fmt.Sprintf("SELECT * FROM %s_list_get()", e.proc())
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.queryMaps(r.Context(), sql)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, rows)
	}
}

func (s *Service) handleGet(e entity) http.HandlerFunc {
	sql := fmt.Sprintf("SELECT * FROM %s_get($1)", e.proc())
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			s.writeError(w, r, fmt.Errorf("%w: code is required", ErrBadRequest))
			return
		}

		rows, err := s.queryMaps(r.Context(), sql, code)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if len(rows) == 0 {
			s.writeError(w, r, ErrNotFound)
			return
		}
		s.writeJSON(w, http.StatusOK, rows[0])
	}
}

func (s *Service) handleRemove(e entity) http.HandlerFunc {
	sql := fmt.Sprintf("SELECT remove_%s($1)", e.proc())
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: invalid form body", ErrBadRequest))
			return
		}
		code := r.FormValue("code")
		if code == "" {
			s.writeError(w, r, fmt.Errorf("%w: code is required", ErrBadRequest))
			return
		}

		if err := s.exec(r.Context(), sql, code); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"result": true})
	}
}

// nullableForm maps an absent or empty form field to SQL NULL so the
// stored procedures can COALESCE their own defaults.
func nullableForm(r *http.Request, field string) any {
	v := r.FormValue(field)
	if v == "" {
		return nil
	}
	return v
}

// hashedPassword bcrypt-hashes the submitted password, or returns nil when
// the form leaves the password unchanged.
func hashedPassword(r *http.Request) (any, error) {
	password := r.FormValue("password")
	if password == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return string(hash), nil
}
