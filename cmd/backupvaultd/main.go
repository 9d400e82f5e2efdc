// ABOUTME: Backupvaultd stores passphrase-encrypted seed backups for seedvault clients.
// ABOUTME: One blob per user; the server never sees plaintext or the passphrase.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	_ "seedvault/cmd/backupvaultd/migrations" // Import migrations
)

// maxCiphertextB64 bounds the stored blob. A 32-byte seed sealed with a
// 12-byte nonce and 16-byte tag is 80 base64 characters; anything near the
// cap is not a seed backup.
const maxCiphertextB64 = 4096

// Server bundles state for backupvaultd handlers.
type Server struct {
	app          core.App
	limiters     *rateLimiterStore // Per-user rate limiting for authenticated endpoints
	authLimiters *rateLimiterStore // Per-IP rate limiting before auth is established
}

func main() {
	app := pocketbase.New()

	srv := &Server{
		app:          app,
		limiters:     newRateLimiterStore(DefaultRateLimitConfig()),
		authLimiters: newRateLimiterStore(AuthRateLimitConfig()),
	}

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		srv.registerRoutes(se.Router)
		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func (s *Server) registerRoutes(r *router.Router[*core.RequestEvent]) {
	r.GET("/healthz", func(e *core.RequestEvent) error {
		return e.NoContent(http.StatusOK)
	})

	r.PUT("/v1/backup", s.wrapHandler(s.withAuth(s.handleUpsertBackup)))
	r.GET("/v1/backup", s.wrapHandler(s.withAuth(s.handleGetBackup)))
	r.DELETE("/v1/backup", s.wrapHandler(s.withAuth(s.handleDeleteBackup)))
}

// wrapHandler converts http.HandlerFunc to PocketBase RequestHandler.
func (s *Server) wrapHandler(h http.HandlerFunc) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		h(e.Response, e.Request)
		return nil
	}
}

// auth middleware

type ctxUserIDKey struct{}

func contextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey{}, userID)
}

func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(ctxUserIDKey{}).(string)
	return userID
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authLimiters != nil {
			limiter := s.authLimiters.get(getClientIP(r))
			if !limiter.Allow() {
				throttle(w, s.authLimiters)
				return
			}
		}

		userID, err := s.authUser(r)
		if err != nil {
			fail(w, http.StatusUnauthorized, err.Error())
			return
		}

		if s.limiters != nil {
			limiter := s.limiters.get(userID)
			if !limiter.Allow() {
				throttle(w, s.limiters)
				return
			}
		}

		ctx := contextWithUserID(r.Context(), userID)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) authUser(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", errors.New("missing bearer token")
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if raw == "" {
		return "", errors.New("missing bearer token")
	}

	userRecord, err := s.app.FindAuthRecordByToken(raw, "")
	if err != nil {
		return "", errors.New("invalid token")
	}
	return userRecord.Id, nil
}

// handlers

type upsertReq struct {
	UserID        string          `json:"user_id"`
	BackupID      string          `json:"backup_id"`
	Params        json.RawMessage `json:"params"` // opaque KDF parameters, stored verbatim
	CiphertextB64 string          `json:"ciphertext"`
}

func (s *Server) handleUpsertBackup(w http.ResponseWriter, r *http.Request) {
	authUser := userIDFromContext(r.Context())

	req, err := decodeUpsertRequest(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID != authUser {
		fail(w, http.StatusForbidden, "token user mismatch")
		return
	}

	err = s.app.RunInTransaction(func(txApp core.App) error {
		backupsCol, err := txApp.FindCollectionByNameOrId("seed_backups")
		if err != nil {
			return errors.New("collection not found")
		}

		record, err := txApp.FindFirstRecordByFilter(backupsCol, "user_id = {:user_id}",
			map[string]any{"user_id": req.UserID})
		if err != nil {
			record = core.NewRecord(backupsCol)
			record.Set("user_id", req.UserID)
		}
		record.Set("backup_id", req.BackupID)
		record.Set("params_json", string(req.Params))
		record.Set("ct_b64", req.CiphertextB64)
		record.Set("updated_at", time.Now().Unix())
		return txApp.Save(record)
	})
	if err != nil {
		log.Printf("backup upsert error: %v", err)
		fail(w, http.StatusInternalServerError, "db error")
		return
	}

	ok(w, map[string]any{"ok": true, "backup_id": req.BackupID})
}

func decodeUpsertRequest(r *http.Request) (upsertReq, error) {
	var req upsertReq
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		return upsertReq{}, errors.New("invalid json")
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.BackupID = strings.TrimSpace(req.BackupID)
	req.CiphertextB64 = strings.TrimSpace(req.CiphertextB64)
	if req.UserID == "" || req.CiphertextB64 == "" || len(req.Params) == 0 {
		return upsertReq{}, errors.New("user_id, params and ciphertext required")
	}
	if len(req.CiphertextB64) > maxCiphertextB64 {
		return upsertReq{}, errors.New("ciphertext too large")
	}
	return req, nil
}

type backupResp struct {
	BackupID      string          `json:"backup_id"`
	Params        json.RawMessage `json:"params"`
	CiphertextB64 string          `json:"ciphertext"`
	UpdatedAt     int64           `json:"updated_at"`
}

func (s *Server) handleGetBackup(w http.ResponseWriter, r *http.Request) {
	authUser := userIDFromContext(r.Context())

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		userID = authUser
	}
	if userID != authUser {
		fail(w, http.StatusForbidden, "token user mismatch")
		return
	}

	record, err := s.findBackup(userID)
	if err != nil {
		fail(w, http.StatusNotFound, "no backup exists")
		return
	}

	ok(w, backupResp{
		BackupID:      record.GetString("backup_id"),
		Params:        json.RawMessage(record.GetString("params_json")),
		CiphertextB64: record.GetString("ct_b64"),
		UpdatedAt:     int64(record.GetInt("updated_at")),
	})
}

func (s *Server) handleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	authUser := userIDFromContext(r.Context())

	record, err := s.findBackup(authUser)
	if err != nil {
		// Deleting a missing backup is fine; the end state is identical.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := s.app.Delete(record); err != nil {
		log.Printf("backup delete error: %v", err)
		fail(w, http.StatusInternalServerError, "db error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) findBackup(userID string) (*core.Record, error) {
	backupsCol, err := s.app.FindCollectionByNameOrId("seed_backups")
	if err != nil {
		return nil, err
	}
	return s.app.FindFirstRecordByFilter(backupsCol, "user_id = {:user_id}",
		map[string]any{"user_id": userID})
}

// helpers

func ok(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func throttle(w http.ResponseWriter, limiters *rateLimiterStore) {
	w.Header().Set("Retry-After", strconv.Itoa(limiters.retryAfterSeconds()))
	fail(w, http.StatusTooManyRequests, "rate limit exceeded")
}

func fail(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]any{"error": msg}); err != nil {
		log.Printf("write error response: %v", err)
	}
}

func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
