package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"Lumen_Blog/internal/auth"
	"Lumen_Blog/internal/data"
	"Lumen_Blog/internal/handler"
	"Lumen_Blog/internal/model"
	"Lumen_Blog/internal/repository"
	"Lumen_Blog/internal/router"
	"Lumen_Blog/internal/service"
	"Lumen_Blog/internal/testdb"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("handler-secret")

type apiFixture struct {
	engine   *gin.Engine
	users    repository.UserRepository
	postID   uint64
	modToken string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testdb.Open(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	events := repository.NewCommentEventRepository(db)
	policy := auth.NewRolePolicy(model.RoleModerator, model.RoleAdmin)

	mod := &model.User{Username: "mod", Password: "x", Role: model.RoleModerator}
	require.NoError(t, users.Create(ctx, mod))
	post := &model.Post{AuthorID: mod.ID, Title: "t", Content: "c"}
	require.NoError(t, posts.Create(ctx, post))

	commentSvc := service.NewCommentService(comments, posts, events, data.NewUnitOfWork(db, comments), nil, nil, policy)
	r := router.SetupRouter(secret, policy,
		handler.NewUserHandler(service.NewUserService(users, secret, time.Hour)),
		handler.NewPostHandler(service.NewPostService(posts, policy)),
		handler.NewCommentHandler(commentSvc),
	)

	tok, err := auth.IssueToken(secret, auth.Identity{UserID: mod.ID, Username: mod.Username, Role: mod.Role}, time.Hour)
	require.NoError(t, err)
	return &apiFixture{engine: r, users: users, postID: post.ID, modToken: "Bearer " + tok}
}

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (f *apiFixture) call(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

type commentJSON struct {
	ID        uint64        `json:"id"`
	SubjectID uint64        `json:"subjectId"`
	ParentID  *uint64       `json:"parentId"`
	Body      string        `json:"body"`
	Published bool          `json:"published"`
	Replies   []commentJSON `json:"replies"`
}

type treeJSON struct {
	Roots      []commentJSON `json:"roots"`
	TotalCount int           `json:"totalCount"`
}

func (f *apiFixture) commentsPath() string {
	return "/api/v1/posts/" + itoa(f.postID) + "/comments"
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func (f *apiFixture) submit(t *testing.T, parentID *uint64, body string) commentJSON {
	t.Helper()
	code, env := f.call(t, http.MethodPost, f.commentsPath(), "", gin.H{
		"parentId": parentID, "authorName": "guest", "body": body,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var c commentJSON
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return c
}

func (f *apiFixture) list(t *testing.T, token, query string) treeJSON {
	t.Helper()
	code, env := f.call(t, http.MethodGet, f.commentsPath()+query, token, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var tree treeJSON
	require.NoError(t, json.Unmarshal(env.Data, &tree))
	return tree
}

func TestCommentLifecycleOverHTTP(t *testing.T) {
	f := newAPI(t)

	root := f.submit(t, nil, "root")
	assert.False(t, root.Published)
	assert.NotNil(t, root.Replies)
	reply := f.submit(t, &root.ID, "reply")

	// 未发布的评论对公众不可见
	assert.Equal(t, 0, f.list(t, "", "").TotalCount)
	assert.Equal(t, 2, f.list(t, f.modToken, "").TotalCount)

	code, env := f.call(t, http.MethodPatch, "/api/v1/comments/"+itoa(root.ID)+"/moderation", f.modToken, gin.H{"published": true})
	require.Equal(t, http.StatusOK, code, env.Error)

	tree := f.list(t, "", "")
	require.Len(t, tree.Roots, 1)
	assert.Equal(t, "root", tree.Roots[0].Body)
	assert.Empty(t, tree.Roots[0].Replies)

	code, _ = f.call(t, http.MethodPatch, "/api/v1/comments/"+itoa(reply.ID), f.modToken, gin.H{"body": "edited"})
	assert.Equal(t, http.StatusOK, code)
	modTree := f.list(t, f.modToken, "?order=desc")
	require.Len(t, modTree.Roots, 1)
	require.Len(t, modTree.Roots[0].Replies, 1)
	assert.Equal(t, "edited", modTree.Roots[0].Replies[0].Body)

	code, env = f.call(t, http.MethodDelete, "/api/v1/comments/"+itoa(root.ID), f.modToken, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.NotEmpty(t, env.Error)

	code, _ = f.call(t, http.MethodDelete, "/api/v1/comments/"+itoa(root.ID)+"?cascade=true", f.modToken, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, f.list(t, f.modToken, "").TotalCount)

	code, _ = f.call(t, http.MethodGet, "/api/v1/comments/"+itoa(root.ID)+"/events", f.modToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestCommentErrorsOverHTTP(t *testing.T) {
	f := newAPI(t)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"bad post id", http.MethodGet, "/api/v1/posts/abc/comments", "", nil, http.StatusBadRequest},
		{"unknown post", http.MethodGet, "/api/v1/posts/404/comments", "", nil, http.StatusNotFound},
		{"bad order", http.MethodGet, f.commentsPath() + "?order=sideways", "", nil, http.StatusBadRequest},
		{"missing body", http.MethodPost, f.commentsPath(), "", gin.H{"authorName": "a"}, http.StatusBadRequest},
		{"blank body", http.MethodPost, f.commentsPath(), "", gin.H{"authorName": "a", "body": "   "}, http.StatusBadRequest},
		{"bad email", http.MethodPost, f.commentsPath(), "", gin.H{"authorName": "a", "body": "b", "authorEmail": "nope"}, http.StatusBadRequest},
		{"missing parent", http.MethodPost, f.commentsPath(), "", gin.H{"authorName": "a", "body": "b", "parentId": 999}, http.StatusNotFound},
		{"moderate anonymously", http.MethodPatch, "/api/v1/comments/1/moderation", "", gin.H{"published": true}, http.StatusUnauthorized},
		{"moderate missing", http.MethodPatch, "/api/v1/comments/999/moderation", f.modToken, gin.H{"published": true}, http.StatusNotFound},
		{"moderate without flag", http.MethodPatch, "/api/v1/comments/1/moderation", f.modToken, gin.H{}, http.StatusBadRequest},
		{"bad cascade", http.MethodDelete, "/api/v1/comments/1?cascade=maybe", f.modToken, nil, http.StatusBadRequest},
		{"remove missing", http.MethodDelete, "/api/v1/comments/999", f.modToken, nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := f.call(t, tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.want, code)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestReaderCannotModerate(t *testing.T) {
	f := newAPI(t)
	ctx := context.Background()
	reader := &model.User{Username: "reader", Password: "x", Role: model.RoleReader}
	require.NoError(t, f.users.Create(ctx, reader))
	tok, err := auth.IssueToken(secret, auth.Identity{UserID: reader.ID, Username: reader.Username, Role: reader.Role}, time.Hour)
	require.NoError(t, err)

	c := f.submit(t, nil, "x")
	code, _ := f.call(t, http.MethodPatch, "/api/v1/comments/"+itoa(c.ID)+"/moderation", "Bearer "+tok, gin.H{"published": true})
	assert.Equal(t, http.StatusForbidden, code)

	// 读者带着令牌看列表也只能看到已发布的
	assert.Equal(t, 0, f.list(t, "Bearer "+tok, "").TotalCount)
}

func TestUserEndpoints(t *testing.T) {
	f := newAPI(t)

	code, env := f.call(t, http.MethodPost, "/api/v1/users/register", "", gin.H{"username": "dave", "password": "secret1"})
	require.Equal(t, http.StatusOK, code, env.Error)
	code, _ = f.call(t, http.MethodPost, "/api/v1/users/register", "", gin.H{"username": "dave", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = f.call(t, http.MethodPost, "/api/v1/users/login", "", gin.H{"username": "dave", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = f.call(t, http.MethodPost, "/api/v1/users/login", "", gin.H{"username": "dave", "password": "secret1"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	code, env = f.call(t, http.MethodGet, "/api/v1/profile", "Bearer "+login.Token, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), `"username":"dave"`)

	// 审核员不是管理员，不能改角色
	code, _ = f.call(t, http.MethodPut, "/api/v1/users/1/role", f.modToken, gin.H{"role": model.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestPostEndpoints(t *testing.T) {
	f := newAPI(t)

	code, env := f.call(t, http.MethodPost, "/api/v1/posts", f.modToken, gin.H{"title": "New", "content": "<p>body</p>"})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, _ = f.call(t, http.MethodPost, "/api/v1/posts", "", gin.H{"title": "New", "content": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = f.call(t, http.MethodGet, "/api/v1/posts?limit=10", "", nil)
	require.Equal(t, http.StatusOK, code)
	var posts []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	assert.Len(t, posts, 2)

	code, _ = f.call(t, http.MethodGet, "/api/v1/posts/"+itoa(f.postID), "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.call(t, http.MethodGet, "/api/v1/posts/404", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
