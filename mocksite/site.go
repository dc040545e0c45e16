// Package mocksite is a small web application with the same login flow as the application
// under test, plus pages that exercise every kind of browser interaction the facade supports.
// The harness serves it for the self-check suite and for demo runs.
//
// All links are relative, so the site works under any base path.
package mocksite

import (
	"html/template"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"
)

// Options configures the site. The zero value accepts any credentials.
type Options struct {
	Username string
	Password string
}

// Site is the mock application.
type Site struct {
	options Options
	router  *mux.Router
	logins  atomic.Int64
}

func New(options Options) *Site {
	s := &Site{options: options, router: mux.NewRouter()}
	s.router.HandleFunc("/", s.showLogin).Methods("GET")
	s.router.HandleFunc("/login", s.showLogin).Methods("GET")
	s.router.HandleFunc("/landing", s.signIn).Methods("POST")
	s.router.HandleFunc("/landing", s.showLanding).Methods("GET")
	for path, page := range map[string]string{
		"/popup":         popupPage,
		"/popup-window":  popupWindowPage,
		"/alert":         alertPage,
		"/dropdown":      dropdownPage,
		"/frame":         framePage,
		"/frame-content": frameContentPage,
		"/loader":        loaderPage,
		"/gestures":      gesturesPage,
	} {
		s.router.Handle(path, staticPage(page)).Methods("GET")
	}
	return s
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SuccessfulLogins is how many times someone has signed in.
func (s *Site) SuccessfulLogins() int {
	return int(s.logins.Load())
}

func (s *Site) showLogin(w http.ResponseWriter, _ *http.Request) {
	render(w, http.StatusOK, loginTemplate, loginData{})
}

func (s *Site) signIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	user, pass := r.PostForm.Get("userName"), r.PostForm.Get("passWord")
	if s.options.Username != "" && (user != s.options.Username || pass != s.options.Password) {
		render(w, http.StatusUnauthorized, loginTemplate, loginData{Error: "Invalid user name or password"})
		return
	}
	s.logins.Add(1)
	render(w, http.StatusOK, landingTemplate, landingData{User: user})
}

func (s *Site) showLanding(w http.ResponseWriter, _ *http.Request) {
	render(w, http.StatusOK, landingTemplate, landingData{})
}

func render(w http.ResponseWriter, status int, t *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = t.Execute(w, data)
}

func staticPage(html string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	})
}
