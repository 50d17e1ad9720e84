// Package api exposes the archive over HTTP. Responses use the standard
// envelope; each failure kind maps to a stable status and code so clients
// can discriminate them.
package api

import (
	"errors"
	"fmt"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Sam33128/Gita-pyqvault/pkg/audit"
	"github.com/Sam33128/Gita-pyqvault/pkg/auth"
	"github.com/Sam33128/Gita-pyqvault/pkg/catalog"
	"github.com/Sam33128/Gita-pyqvault/pkg/files"
	"github.com/Sam33128/Gita-pyqvault/pkg/types"
)

// API holds the handlers for the archive endpoints.
type API struct {
	store          *catalog.Store
	repo           *files.Repository
	gate           *auth.Gate
	checker        *audit.Checker
	maxUploadBytes int64
}

// New creates the API over the given collaborators. Upload requests larger
// than maxUploadBytes are rejected; zero disables the limit.
func New(store *catalog.Store, repo *files.Repository, gate *auth.Gate, checker *audit.Checker, maxUploadBytes int64) *API {
	return &API{store: store, repo: repo, gate: gate, checker: checker, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches all endpoints to the router.
func (a *API) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", a.health)
	router.GET("/files/*ref", a.serveFile)

	api := router.Group("/api")
	api.POST("/admin/login", a.login)
	api.GET("/papers", a.listPapers)
	api.GET("/papers/:id", a.getPaper)
	api.GET("/subjects", a.listSubjects)

	admin := api.Group("")
	admin.Use(a.gate.Middleware())
	admin.POST("/admin/logout", a.logout)
	admin.POST("/papers", a.uploadPapers)
	admin.DELETE("/papers/:id", a.deletePaper)
	admin.GET("/admin/audit", a.runAudit)
}

func (a *API) health(c *gin.Context) {
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    gin.H{"status": "healthy", "papers": a.store.Len()},
	})
}

func (a *API) login(c *gin.Context) {
	var req struct {
		Password string `json:"password" form:"password"`
	}
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "password required")
		return
	}

	token, err := a.gate.Login(strings.TrimSpace(req.Password))
	if err != nil {
		fail(c, http.StatusUnauthorized, "INVALID_CREDENTIAL", "incorrect password")
		return
	}

	c.SetCookie(auth.SessionCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: gin.H{"token": token}})
}

func (a *API) logout(c *gin.Context) {
	a.gate.Logout(auth.TokenFromRequest(c))
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, types.APIResponse{Success: true})
}

func (a *API) listPapers(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	papers := catalog.Query(a.store.Load(), filter)
	catalog.SortNewestFirst(papers)
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: papers})
}

func (a *API) getPaper(c *gin.Context) {
	paper, err := a.store.Get(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "NOT_FOUND", "paper not found")
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: paper})
}

func (a *API) listSubjects(c *gin.Context) {
	year, err := optionalInt(c.Query("year"))
	if err != nil {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "year must be a number")
		return
	}
	semester, err := optionalInt(c.Query("semester"))
	if err != nil {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "semester must be a number")
		return
	}

	subjects := catalog.Subjects(a.store.Load(), year, semester)
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: subjects})
}

func (a *API) uploadPapers(c *gin.Context) {
	if a.maxUploadBytes > 0 {
		if c.Request.ContentLength > a.maxUploadBytes {
			fail(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload exceeds the size limit")
			return
		}
		// Backstop for chunked bodies that carry no Content-Length.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.maxUploadBytes)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload exceeds the size limit")
			return
		}
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "no files provided")
		return
	}

	subject := strings.TrimSpace(c.PostForm("subject"))
	examType := strings.TrimSpace(c.PostForm("exam_type"))
	year, errYear := strconv.Atoi(c.PostForm("year"))
	semester, errSem := strconv.Atoi(c.PostForm("semester"))
	if errYear != nil || errSem != nil {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "year and semester must be numbers")
		return
	}
	if subject == "" || (examType != types.ExamTypeMid && examType != types.ExamTypeEnd) ||
		year < 1 || year > 4 || semester < 1 || semester > 8 {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "please fill all fields correctly")
		return
	}

	examYear, academicYear, err := catalog.ParseExamYear(c.PostForm("exam_year"))
	if err != nil || examYear < 2000 {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "enter a valid exam year like 2024 or 2024-25")
		return
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		fail(c, http.StatusBadRequest, "BAD_REQUEST", "choose at least one file")
		return
	}

	targetDir := path.Join(strconv.Itoa(year), strconv.Itoa(semester), subject, examType)
	result := types.UploadResult{Saved: []types.Paper{}}
	var firstErr error

	for _, upload := range uploads {
		paper, err := a.storeOne(upload, targetDir, subject, examType, year, semester, examYear, academicYear)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s: %s", upload.Filename, skipReason(err)))
			continue
		}
		result.Saved = append(result.Saved, paper)
	}

	if len(result.Saved) == 0 && firstErr != nil {
		status, code := statusFor(firstErr)
		c.JSON(status, types.APIResponse{
			Success: false,
			Error:   skipReason(firstErr),
			Code:    code,
			Data:    result,
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: result})
}

// storeOne writes one uploaded file and then appends its record. The file
// write comes first; if the append fails the stored file is removed so the
// catalog never references bytes that were not kept.
func (a *API) storeOne(upload *multipart.FileHeader, dir, subject, examType string, year, semester, examYear int, academicYear string) (types.Paper, error) {
	file, err := upload.Open()
	if err != nil {
		return types.Paper{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	ref, err := a.repo.Store(file, dir, upload.Filename)
	if err != nil {
		return types.Paper{}, err
	}

	paper := types.Paper{
		ID:               uuid.NewString(),
		Subject:          subject,
		Year:             year,
		Semester:         semester,
		ExamType:         examType,
		ExamYear:         examYear,
		AcademicYear:     academicYear,
		OriginalFilename: upload.Filename,
		StoredPath:       ref,
		UploadedAt:       time.Now().UTC().Truncate(time.Second),
	}

	if err := a.store.Append(paper); err != nil {
		if delErr := a.repo.Delete(ref); delErr != nil {
			log.Printf("[api] failed to clean up %s after append error: %v", ref, delErr)
		}
		return types.Paper{}, err
	}
	return paper, nil
}

func (a *API) deletePaper(c *gin.Context) {
	id := c.Param("id")
	paper, err := a.store.Get(id)
	if err != nil {
		fail(c, http.StatusNotFound, "NOT_FOUND", "paper not found")
		return
	}

	// File first: a failed file delete aborts with the catalog untouched. A
	// file that is already gone is an orphaned record, so removal proceeds.
	if err := a.repo.Delete(paper.StoredPath); err != nil && !errors.Is(err, files.ErrNotFound) {
		fail(c, http.StatusInternalServerError, "FILE_DELETE_FAILED",
			fmt.Sprintf("could not remove file: %v", err))
		return
	}

	a.removeRecord(c, id)
}

// removeRecord drops the record once its file is gone. A record another
// delete already removed reads as not found; only a failed persist is a
// partial delete.
func (a *API) removeRecord(c *gin.Context, id string) {
	if _, err := a.store.Remove(id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			fail(c, http.StatusNotFound, "NOT_FOUND", "paper not found")
			return
		}
		// The file is gone but the record remains; the audit will surface it.
		log.Printf("[api] partial delete of %s: file removed, record removal failed: %v", id, err)
		fail(c, http.StatusInternalServerError, "PARTIAL_DELETE",
			"file removed but record removal failed; run a consistency audit")
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: gin.H{"id": id}})
}

func (a *API) runAudit(c *gin.Context) {
	report, err := a.checker.Run()
	if err != nil {
		fail(c, http.StatusInternalServerError, "AUDIT_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: report})
}

func (a *API) serveFile(c *gin.Context) {
	ref := strings.TrimPrefix(c.Param("ref"), "/")

	file, err := a.repo.Retrieve(ref)
	if err != nil {
		fail(c, http.StatusNotFound, "NOT_FOUND", "file not found")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		fail(c, http.StatusInternalServerError, "INTERNAL", "failed to stat file")
		return
	}

	if contentType := mime.TypeByExtension(path.Ext(ref)); contentType != "" {
		c.Header("Content-Type", contentType)
	}
	http.ServeContent(c.Writer, c.Request, path.Base(ref), info.ModTime(), file)
}

// filterFromQuery builds a catalog filter from the optional query params.
func filterFromQuery(c *gin.Context) (catalog.Filter, error) {
	year, err := optionalInt(c.Query("year"))
	if err != nil {
		return catalog.Filter{}, errors.New("year must be a number")
	}
	semester, err := optionalInt(c.Query("semester"))
	if err != nil {
		return catalog.Filter{}, errors.New("semester must be a number")
	}
	return catalog.Filter{
		Subject:  strings.TrimSpace(c.Query("subject")),
		Year:     year,
		Semester: semester,
		ExamType: strings.TrimSpace(c.Query("exam_type")),
	}, nil
}

func optionalInt(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// statusFor maps a domain error to its response status and code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, files.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE"
	case errors.Is(err, files.ErrCollision):
		return http.StatusConflict, "NAME_COLLISION"
	case errors.Is(err, catalog.ErrDuplicateID):
		return http.StatusConflict, "DUPLICATE_ID"
	case errors.Is(err, files.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, catalog.ErrCorrupt):
		return http.StatusInternalServerError, "STORE_CORRUPT"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, files.ErrUnsupportedType):
		return "unsupported file type"
	case errors.Is(err, files.ErrCollision):
		return "a file with this name already exists"
	default:
		return err.Error()
	}
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, types.APIResponse{Success: false, Error: message, Code: code})
}
