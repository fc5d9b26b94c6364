package echoweb_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Shravik17/Attendance-Tracker/apps/web/echo"
	"github.com/Shravik17/Attendance-Tracker/core"
	"github.com/Shravik17/Attendance-Tracker/core/user"
	"github.com/Shravik17/Attendance-Tracker/tests"
)

func setup(t *testing.T, configure ...func(*core.Config)) (echoweb.Server, testutil.Services) {
	conf := testutil.NewConfig()
	for _, fn := range configure {
		fn(conf)
	}
	svcs := testutil.NewServices(testutil.PrepareDB(t))

	usrSvc, err := user.NewService(conf)
	if err != nil {
		t.Fatalf("user.NewService() failed: %v", err)
	}
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	app := echoweb.NewServer(echoweb.ServerDeps{
		Conf:           conf,
		Logger:         testutil.NewLogger(),
		UserSvc:        usrSvc,
		StudentSvc:     svcs.Students,
		AttendanceSvc:  svcs.Attendance,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return app, svcs
}

type httpTest struct {
	name         string
	method       string
	path         string
	form         url.Values
	principal    user.Principal
	wantCode     int
	wantLocation string
	wantFlash    string
	wantBody     []string
}

func sessionCookie(t *testing.T, p user.Principal) *http.Cookie {
	conf := testutil.NewConfig()
	token, err := echoweb.GenerateToken(echoweb.GetPrincipalClaims(p, conf), []byte(conf.SecretKey))
	if err != nil {
		t.Fatalf("sessionCookie() failed: %v", err)
	}
	return &http.Cookie{Name: "session", Value: token}
}

func newAuthRequest(t *testing.T, method, path string, p user.Principal, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if p.IsAuthenticated() {
		req.AddCookie(sessionCookie(t, p))
	}
	return req, httptest.NewRecorder()
}

func newUploadRequest(t *testing.T, path string, p user.Principal, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("newUploadRequest() failed: %v", err)
		}
		_, _ = fw.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.AddCookie(sessionCookie(t, p))
	return req, httptest.NewRecorder()
}

// flashOf returns the notice a response queued for the next page.
func flashOf(rec *httptest.ResponseRecorder) string {
	var msg string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "flash" {
			msg, _ = url.QueryUnescape(c.Value)
		}
	}
	return msg
}

func checkResponse(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != tt.wantLocation {
		t.Errorf("failed! location = %q; wantLocation %q", loc, tt.wantLocation)
	}
	if tt.wantFlash != "" {
		if msg := flashOf(rec); msg != tt.wantFlash {
			t.Errorf("failed! flash = %q; wantFlash %q", msg, tt.wantFlash)
		}
	}
	for _, want := range tt.wantBody {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("failed! body does not contain %q:\n%s", want, rec.Body.String())
		}
	}
}

func runHTTPTests(t *testing.T, app echoweb.Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(t, method, tt.path, tt.principal, tt.form)
			app.ServeHTTP(rec, req)
			checkResponse(t, tt, rec)
		})
	}
}
