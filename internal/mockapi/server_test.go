package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mediahub/internal/client/api"
	"github.com/dmitrijs2005/mediahub/internal/mockapi/config"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type wire struct {
	StatusCode int             `json:"statusCode"`
	Response   json.RawMessage `json:"response"`
	Message    string          `json:"message"`
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	opts = append([]Option{WithHashParams(FastHashParams)}, opts...)
	s := NewInMemory("test-secret", time.Hour, opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, token string, body io.Reader, contentType string) (int, wire) {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var w wire
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&w))
	return resp.StatusCode, w
}

func postJSON(t *testing.T, url string, v any) (int, wire) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return do(t, http.MethodPost, url, "", bytes.NewReader(b), "application/json")
}

func signUp(t *testing.T, base, email string) authView {
	t.Helper()
	code, w := postJSON(t, base+"/api/v1/auth/signup", signUpRequest{
		FullName: "Test User", Email: email, Password: "password1", ConfirmPassword: "password1",
	})
	require.Equal(t, http.StatusOK, code, w.Message)
	var av authView
	require.NoError(t, json.Unmarshal(w.Response, &av))
	return av
}

func uploadBody(t *testing.T, name string, data []byte, title string) (io.Reader, string) {
	t.Helper()
	var fields map[string]string
	if title != "" {
		fields = map[string]string{"title": title}
	}
	body, ct, err := api.NewFileUpload("file", api.FilePart{FileName: name, Data: data}, fields).Encode()
	require.NoError(t, err)
	return bytes.NewReader(body), ct
}

func TestAuthFlow(t *testing.T) {
	s, ts := newTestServer(t)

	av := signUp(t, ts.URL, "a@example.com")
	assert.NotEmpty(t, av.Token)
	assert.NotEmpty(t, av.ID)

	code, w := postJSON(t, ts.URL+"/api/v1/auth/signin", signInRequest{Email: "a@example.com", Password: "password1"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, http.StatusOK, w.StatusCode)
	var got authView
	require.NoError(t, json.Unmarshal(w.Response, &got))
	assert.Equal(t, av.ID, got.ID)

	code, w = postJSON(t, ts.URL+"/api/v1/auth/signin", signInRequest{Email: "a@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", w.Message)

	code, w = postJSON(t, ts.URL+"/api/v1/auth/signup", signUpRequest{FullName: "X", Email: "a@example.com", Password: "password1"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User already exists", w.Message)

	code, _ = do(t, http.MethodPost, ts.URL+"/api/v1/auth/signin", "", bytes.NewBufferString("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, 3, s.Calls(RouteSignIn))
	assert.Equal(t, 2, s.Calls(RouteSignUp))
}

func TestMediaLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	av := signUp(t, ts.URL, "a@example.com")
	listURL := ts.URL + "/api/v1/media/user/" + av.ID

	body, ct := uploadBody(t, "cat.png", pngBytes, "Cat")
	code, w := do(t, http.MethodPost, ts.URL+"/api/v1/media/post", av.Token, body, ct)
	require.Equal(t, http.StatusCreated, code, w.Message)
	assert.Equal(t, "Media uploaded successfully", w.Message)

	var single singleView
	require.NoError(t, json.Unmarshal(w.Response, &single))
	item := single.Media
	assert.Equal(t, "cat.png", item.FileName)
	assert.Equal(t, "image", item.FileType)
	assert.Equal(t, "Cat", item.Title)
	assert.Equal(t, "/uploads/"+item.ID+".png", item.FileURL)

	code, w = do(t, http.MethodGet, listURL, av.Token, nil, "")
	require.Equal(t, http.StatusOK, code)
	var list listView
	require.NoError(t, json.Unmarshal(w.Response, &list))
	require.Len(t, list.Media, 1)
	assert.Equal(t, item.ID, list.Media[0].ID)

	resp, err := http.Get(ts.URL + item.FileURL)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, pngBytes, raw)

	body, ct = uploadBody(t, "dog.png", pngBytes, "")
	code, w = do(t, http.MethodPatch, ts.URL+"/api/v1/media/"+item.ID, av.Token, body, ct)
	require.Equal(t, http.StatusOK, code, w.Message)
	require.NoError(t, json.Unmarshal(w.Response, &single))
	assert.Equal(t, "dog.png", single.Media.FileName)
	assert.Equal(t, "Cat", single.Media.Title)

	code, w = do(t, http.MethodDelete, ts.URL+"/api/v1/media/"+item.ID, av.Token, nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Media deleted successfully", w.Message)
	assert.Empty(t, w.Response)

	code, w = do(t, http.MethodGet, ts.URL+"/api/v1/media/"+item.ID, av.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Media not found", w.Message)

	code, w = do(t, http.MethodGet, listURL, av.Token, nil, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(w.Response, &list))
	assert.Empty(t, list.Media)
}

func TestMedia_RejectsNonMedia(t *testing.T) {
	_, ts := newTestServer(t)
	av := signUp(t, ts.URL, "a@example.com")

	body, ct := uploadBody(t, "notes.txt", []byte("just text"), "")
	code, w := do(t, http.MethodPost, ts.URL+"/api/v1/media/post", av.Token, body, ct)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Only image and video files are allowed", w.Message)
}

func TestMedia_RejectsOversized(t *testing.T) {
	_, ts := newTestServer(t, WithMaxUploadSize(16))
	av := signUp(t, ts.URL, "a@example.com")

	body, ct := uploadBody(t, "cat.png", pngBytes, "")
	code, _ := do(t, http.MethodPost, ts.URL+"/api/v1/media/post", av.Token, body, ct)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMedia_Auth(t *testing.T) {
	s, ts := newTestServer(t)
	a := signUp(t, ts.URL, "a@example.com")
	b := signUp(t, ts.URL, "b@example.com")

	code, w := do(t, http.MethodGet, ts.URL+"/api/v1/media/user/"+a.ID, "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", w.Message)

	code, _ = do(t, http.MethodGet, ts.URL+"/api/v1/media/user/"+a.ID, "garbage", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	expired, err := s.IssueToken(a.ID, -time.Minute)
	require.NoError(t, err)
	code, w = do(t, http.MethodGet, ts.URL+"/api/v1/media/user/"+a.ID, expired, nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token expired", w.Message)

	code, _ = do(t, http.MethodGet, ts.URL+"/api/v1/media/user/"+a.ID, b.Token, nil, "")
	assert.Equal(t, http.StatusForbidden, code)

	body, ct := uploadBody(t, "cat.png", pngBytes, "")
	code, w = do(t, http.MethodPost, ts.URL+"/api/v1/media/post", a.Token, body, ct)
	require.Equal(t, http.StatusCreated, code)
	var single singleView
	require.NoError(t, json.Unmarshal(w.Response, &single))

	code, _ = do(t, http.MethodDelete, ts.URL+"/api/v1/media/"+single.Media.ID, b.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, code)

	assert.Equal(t, 4, s.Calls(RouteMediaList))
}

func TestUnknownRoute(t *testing.T) {
	_, ts := newTestServer(t)

	code, w := do(t, http.MethodGet, ts.URL+"/api/v2/nothing", "", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, http.StatusNotFound, w.StatusCode)
}

func TestHold_StallsUntilReleased(t *testing.T) {
	s, ts := newTestServer(t)
	av := signUp(t, ts.URL, "a@example.com")

	release := s.Hold(RouteMediaList)

	var (
		wg   sync.WaitGroup
		code int
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		code, _ = do(t, http.MethodGet, ts.URL+"/api/v1/media/user/"+av.ID, av.Token, nil, "")
	}()

	require.Eventually(t, func() bool { return s.Calls(RouteMediaList) == 1 }, time.Second, 5*time.Millisecond)

	release()
	release()
	wg.Wait()
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, http.MethodGet, ts.URL+"/api/v1/media/user/"+av.ID, av.Token, nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, s.Calls(RouteMediaList))
}

func TestServe_GracefulShutdown(t *testing.T) {
	s, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/nothing")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNotFound
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * shutdownTimeout):
		t.Fatal("server did not stop")
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddr = "127.0.0.1:0"
	cfg.LogLevel = "error"

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, NewApp(cfg).Run(ctx))
}

func TestApp_RunReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddr = ln.Addr().String()
	cfg.LogLevel = "error"

	require.Error(t, NewApp(cfg).Run(context.Background()))
}
