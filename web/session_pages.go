package web

import (
	"log"
	"net/http"
	"strings"
)

type loginPage struct {
	pageData
	Username string
}

func (p *Pages) loginPage(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, "login.html", loginPage{pageData: newPageData(r)})
}

func (p *Pages) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	if err := p.auth.Check(username, r.PostForm.Get("password")); err != nil {
		log.Printf("WARN: failed login attempt for %q", username)
		data := loginPage{pageData: newPageData(r), Username: username}
		data.Error = "Invalid username or password."
		p.render(w, http.StatusUnauthorized, "login.html", data)
		return
	}
	if err := p.auth.Login(w, r, username); err != nil {
		log.Printf("ERROR: failed to save session: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (p *Pages) logout(w http.ResponseWriter, r *http.Request) {
	if err := p.auth.Logout(w, r); err != nil {
		log.Printf("ERROR: failed to clear session: %v", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
