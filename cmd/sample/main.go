// Command sample runs a small users API built on github.com/bjaus/minapi.
//
// Run:
//
//	go run ./cmd/sample
//
// Print the endpoint catalog:
//
//	go run ./cmd/sample -catalog                 YAML to stdout
//	go run ./cmd/sample -catalog -o api.yaml     YAML to a file
//
// Then explore:
//
//	GET    http://localhost:8080/catalog.yaml
//	GET    http://localhost:8080/v1/health
//	GET    http://localhost:8080/v1/users?role=admin
//	POST   http://localhost:8080/v1/users
//	GET    http://localhost:8080/v1/users/{id}
//	PATCH  http://localhost:8080/v1/users/{id}
//	DELETE http://localhost:8080/v1/users/{id}
//	POST   http://localhost:8080/v1/users/{id}/avatar     multipart form
//	GET    http://localhost:8080/v1/users/{id}/avatar
//	POST   http://localhost:8080/v1/notes                  text/plain body
//	GET    http://localhost:8080/v1/me                     redirect to a named route
package main

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/bjaus/minapi"
)

func main() {
	catalogFlag := flag.Bool("catalog", false, "Print the endpoint catalog as YAML and exit")
	outFlag := flag.String("o", "", "Output file for the catalog (requires -catalog)")
	addrFlag := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg, err := minapi.ConfigFromEnv()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	r := newRouter(cfg, logger, newUserStore())

	if *catalogFlag {
		if err := writeCatalog(r, *outFlag); err != nil {
			slog.Error("catalog generation failed", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting server", "addr", *addrFlag)
	if err := r.ListenAndServe(ctx, *addrFlag); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
	}
	slog.Info("server stopped")
}

func newRouter(cfg minapi.Config, logger *slog.Logger, store *userStore) *minapi.Router {
	r := minapi.New(
		minapi.WithConfig(cfg),
		minapi.WithLogger(logger),
		minapi.WithService(store),
	)

	r.Use(minapi.Recovery())
	r.Use(minapi.Logger(nil))
	r.Use(minapi.Timeout(30 * time.Second))

	r.ServeCatalog("/catalog.json")
	r.ServeCatalogYAML("/catalog.yaml")

	v1 := r.Group("/v1", minapi.WithGroupTags("v1"))

	minapi.Get(v1, "/health", handleHealth,
		minapi.WithSummary("Health check"),
		minapi.WithTags("ops"),
	)

	users := v1.Group("/users",
		minapi.WithGroupTags("users"),
		minapi.WithGroupMiddleware(minapi.RateLimit(minapi.RateLimitConfig{Rate: 20, Burst: 40})),
	)
	minapi.Get(users, "", handleListUsers, minapi.WithSummary("List users"))
	minapi.Post(users, "", handleCreateUser, minapi.WithSummary("Create user"))
	minapi.Get(users, "/{id}", handleGetUser, minapi.WithName("getUser"), minapi.WithSummary("Get user by ID"))
	minapi.Patch(users, "/{id}", handleUpdateUser, minapi.WithSummary("Update user"))
	minapi.Delete(users, "/{id}", handleDeleteUser, minapi.WithSummary("Delete user"))

	minapi.Post(users, "/{id}/avatar", handleUploadAvatar,
		minapi.WithSummary("Upload avatar"),
		minapi.WithTags("files"),
	)
	minapi.Get(users, "/{id}/avatar", handleDownloadAvatar,
		minapi.WithSummary("Download avatar"),
		minapi.WithTags("files"),
	)

	minapi.Post(v1, "/notes", handleNote, minapi.WithSummary("Echo a text note"))
	minapi.Get(v1, "/me", handleMe, minapi.WithSummary("Current user"))

	minapi.Raw(v1, http.MethodGet, "/legacy", handleLegacy,
		minapi.WithDeprecated(),
		minapi.WithMetadata(minapi.ProducesResponse{StatusCode: http.StatusGone}),
	)

	return r
}

func writeCatalog(r *minapi.Router, outFile string) error {
	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile) //nolint:gosec // user-provided CLI flag
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Error("failed to close output file", "err", err)
			}
		}()
		w = f
	}
	return r.WriteCatalogYAML(w)
}

// ---------------------------------------------------------------------------
// Store
// ---------------------------------------------------------------------------

// User is the core domain entity.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type avatar struct {
	name    string
	data    []byte
	modTime time.Time
}

type userStore struct {
	mu      sync.RWMutex
	users   map[string]User
	avatars map[string]avatar
	nextID  int
}

func newUserStore() *userStore {
	now := time.Now()
	return &userStore{
		users: map[string]User{
			"1": {ID: "1", Name: "Alice", Email: "alice@example.com", Role: "admin", CreatedAt: now},
			"2": {ID: "2", Name: "Bob", Email: "bob@example.com", Role: "member", CreatedAt: now},
		},
		avatars: map[string]avatar{},
		nextID:  3,
	}
}

func storeFrom(ctx context.Context) *userStore {
	return minapi.MustResolve[*userStore](minapi.ServicesFrom(ctx))
}

func (s *userStore) list(role string) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b User) int {
		x, _ := strconv.Atoi(a.ID)
		y, _ := strconv.Atoi(b.ID)
		return cmp.Compare(x, y)
	})
	return out
}

func (s *userStore) get(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *userStore) create(in CreateUserBody) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := User{
		ID:        strconv.Itoa(s.nextID),
		Name:      in.Name,
		Email:     in.Email,
		Role:      in.Role,
		CreatedAt: time.Now(),
	}
	s.nextID++
	s.users[u.ID] = u
	return u
}

func (s *userStore) update(id string, patch UpdateUserBody) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, false
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	s.users[id] = u
	return u, true
}

func (s *userStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	delete(s.avatars, id)
	return true
}

func (s *userStore) setAvatar(id string, a avatar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avatars[id] = a
}

func (s *userStore) getAvatar(id string) (avatar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.avatars[id]
	return a, ok
}

// ---------------------------------------------------------------------------
// Request / result types
// ---------------------------------------------------------------------------

type HealthResp struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

type ListUsersReq struct {
	Role   string `query:"role"`
	Limit  int    `query:"limit" default:"50"`
	Offset int    `query:"offset" default:"0"`
}

type ListUsersResp struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

type CreateUserBody struct {
	Name  string `json:"name" validate:"required" maxLength:"100" doc:"Display name"`
	Email string `json:"email" validate:"required,email" doc:"Email address"`
	Role  string `json:"role" validate:"omitempty,oneof=admin member" doc:"User role"`
}

type CreateUserReq struct {
	User minapi.Validated[CreateUserBody] `required:"true"`
}

type createUserResult = minapi.Results2[minapi.CreatedAtRoute[User], minapi.ValidationProblem]

type UserByIDReq struct {
	ID string `path:"id"`
}

type getUserResult = minapi.Results2[minapi.Ok[User], minapi.NotFound]

type UpdateUserBody struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Role  *string `json:"role,omitempty" validate:"omitempty,oneof=admin member"`
}

type UpdateUserReq struct {
	ID    string                           `path:"id"`
	Patch minapi.Validated[UpdateUserBody] `required:"true"`
}

type updateUserResult = minapi.Results3[minapi.Ok[User], minapi.NotFound, minapi.ValidationProblem]

type deleteUserResult = minapi.Results2[minapi.NoContent, minapi.NotFound]

type AvatarForm struct {
	Caption string `json:"caption" maxLength:"200"`
}

type UploadAvatarReq struct {
	ID     string                  `path:"id"`
	Avatar minapi.Form[AvatarForm] `required:"true"`
}

type uploadAvatarResult = minapi.Results3[minapi.NoContent, minapi.NotFound, minapi.BadRequest]

type NoteReq struct {
	Note minapi.Body[string] `maxLength:"4096" required:"true"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func handleHealth(context.Context, *minapi.Void) (minapi.Ok[HealthResp], error) {
	return minapi.Ok[HealthResp]{Value: HealthResp{Status: "ok", Time: time.Now()}}, nil
}

func handleListUsers(ctx context.Context, req *ListUsersReq) (minapi.Ok[ListUsersResp], error) {
	users := storeFrom(ctx).list(req.Role)
	total := len(users)

	if req.Offset > len(users) {
		users = nil
	} else {
		users = users[req.Offset:]
	}
	if req.Limit > 0 && req.Limit < len(users) {
		users = users[:req.Limit]
	}
	return minapi.Ok[ListUsersResp]{Value: ListUsersResp{Users: users, Total: total}}, nil
}

func handleCreateUser(ctx context.Context, req *CreateUserReq) (createUserResult, error) {
	if !req.User.IsValid() {
		return createUserResult{}.From2(minapi.ValidationProblem{Errors: req.User.Errors}), nil
	}
	body := req.User.Value
	if body.Role == "" {
		body.Role = "member"
	}
	u := storeFrom(ctx).create(body)
	return createUserResult{}.From1(minapi.CreatedAtRoute[User]{
		RouteName: "getUser",
		Params:    map[string]string{"id": u.ID},
		Value:     u,
	}), nil
}

func handleGetUser(ctx context.Context, req *UserByIDReq) (getUserResult, error) {
	u, ok := storeFrom(ctx).get(req.ID)
	if !ok {
		return getUserResult{}.From2(minapi.NotFound{Message: "user " + req.ID + " not found"}), nil
	}
	return getUserResult{}.From1(minapi.Ok[User]{Value: u}), nil
}

func handleUpdateUser(ctx context.Context, req *UpdateUserReq) (updateUserResult, error) {
	if !req.Patch.IsValid() {
		return updateUserResult{}.From3(minapi.ValidationProblem{Errors: req.Patch.Errors}), nil
	}
	u, ok := storeFrom(ctx).update(req.ID, req.Patch.Value)
	if !ok {
		return updateUserResult{}.From2(minapi.NotFound{}), nil
	}
	return updateUserResult{}.From1(minapi.Ok[User]{Value: u}), nil
}

func handleDeleteUser(ctx context.Context, req *UserByIDReq) (deleteUserResult, error) {
	if !storeFrom(ctx).delete(req.ID) {
		return deleteUserResult{}.From2(minapi.NotFound{}), nil
	}
	return deleteUserResult{}.From1(minapi.NoContent{}), nil
}

func handleUploadAvatar(ctx context.Context, req *UploadAvatarReq) (uploadAvatarResult, error) {
	store := storeFrom(ctx)
	if _, ok := store.get(req.ID); !ok {
		return uploadAvatarResult{}.From2(minapi.NotFound{}), nil
	}

	upload, err := req.Avatar.File("file")
	if errors.Is(err, minapi.ErrNoFile) {
		return uploadAvatarResult{}.From3(minapi.BadRequest{Message: "missing file field"}), nil
	}
	if err != nil {
		return uploadAvatarResult{}, err
	}

	f, err := upload.Open()
	if err != nil {
		return uploadAvatarResult{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close() //nolint:errcheck // read side

	data, err := io.ReadAll(f)
	if err != nil {
		return uploadAvatarResult{}, fmt.Errorf("read upload: %w", err)
	}
	store.setAvatar(req.ID, avatar{name: upload.Filename, data: data, modTime: time.Now()})

	minapi.MustResolve[*slog.Logger](minapi.ServicesFrom(ctx)).InfoContext(ctx, "avatar stored",
		"user", req.ID, "bytes", len(data), "caption", req.Avatar.Value.Caption)
	return uploadAvatarResult{}.From1(minapi.NoContent{}), nil
}

func handleDownloadAvatar(ctx context.Context, req *UserByIDReq) (minapi.File, error) {
	a, ok := storeFrom(ctx).getAvatar(req.ID)
	if !ok {
		return minapi.File{}, nil
	}
	return minapi.File{Name: a.name, ModTime: a.modTime, Content: bytes.NewReader(a.data)}, nil
}

func handleNote(_ context.Context, req *NoteReq) (minapi.Text, error) {
	return minapi.Text{Body: "noted: " + req.Note.Value}, nil
}

func handleMe(context.Context, *minapi.Void) (minapi.RedirectToRoute, error) {
	return minapi.RedirectToRoute{RouteName: "getUser", Params: map[string]string{"id": "1"}}, nil
}

func handleLegacy(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusGone)
}
