// Package web renders the student-facing browse pages and the admin forms.
// All mutations go through the JSON API; these handlers only read.
package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sam33128/Gita-pyqvault/pkg/auth"
	"github.com/Sam33128/Gita-pyqvault/pkg/catalog"
)

// Handlers serves the HTML pages.
type Handlers struct {
	store *catalog.Store
	gate  *auth.Gate
}

// NewHandlers creates the page handlers.
func NewHandlers(store *catalog.Store, gate *auth.Gate) *Handlers {
	return &Handlers{store: store, gate: gate}
}

// RegisterRoutes attaches the page routes.
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/year/:year", h.yearPage)
	r.GET("/year/:year/semester/:semester", h.semesterPage)
	r.GET("/papers", h.papersPage)
	r.GET("/admin/login", h.loginPage)
	r.GET("/upload", h.uploadPage)
	r.NoRoute(h.notFound)
}

func (h *Handlers) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "PYQ Vault",
		"years": []int{1, 2, 3, 4},
	})
}

func (h *Handlers) yearPage(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	semesters := catalog.SemestersForYear(year)
	if err != nil || semesters == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "year.html", gin.H{
		"title":     "Year " + c.Param("year"),
		"year":      year,
		"semesters": semesters,
	})
}

func (h *Handlers) semesterPage(c *gin.Context) {
	year, errYear := strconv.Atoi(c.Param("year"))
	semester, errSem := strconv.Atoi(c.Param("semester"))
	if errYear != nil || errSem != nil || catalog.SemestersForYear(year) == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	subjects := catalog.Subjects(h.store.Load(), &year, &semester)
	c.HTML(http.StatusOK, "semester.html", gin.H{
		"title":    "Semester " + c.Param("semester"),
		"year":     year,
		"semester": semester,
		"subjects": subjects,
	})
}

func (h *Handlers) papersPage(c *gin.Context) {
	year := optionalFormInt(c.Query("year"))
	semester := optionalFormInt(c.Query("semester"))
	subject := strings.TrimSpace(c.Query("subject"))
	examType := strings.TrimSpace(c.Query("exam_type"))

	all := h.store.Load()
	papers := catalog.Query(all, catalog.Filter{
		Subject:  subject,
		Year:     year,
		Semester: semester,
		ExamType: examType,
	})
	catalog.SortNewestFirst(papers)

	c.HTML(http.StatusOK, "papers.html", gin.H{
		"title":    "Browse Papers",
		"papers":   papers,
		"subjects": catalog.Subjects(all, year, semester),
		"year":     c.Query("year"),
		"semester": c.Query("semester"),
		"subject":  subject,
		"examType": examType,
		"isAdmin":  h.gate.Valid(auth.TokenFromRequest(c)),
	})
}

func (h *Handlers) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Admin Login",
		"next":  c.Query("next"),
	})
}

func (h *Handlers) uploadPage(c *gin.Context) {
	if !h.gate.Valid(auth.TokenFromRequest(c)) {
		c.Redirect(http.StatusFound, "/admin/login?next=/upload")
		return
	}
	c.HTML(http.StatusOK, "upload.html", gin.H{
		"title": "Upload Papers",
	})
}

func (h *Handlers) notFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api") {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "endpoint not found",
			"code":    "NOT_FOUND",
		})
		return
	}
	c.HTML(http.StatusNotFound, "404.html", gin.H{"title": "Page Not Found"})
}

func optionalFormInt(value string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &n
}
