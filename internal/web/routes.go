package web

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tfeld/trackdb/internal/database"
	"github.com/tfeld/trackdb/internal/gpx"
	"github.com/tfeld/trackdb/internal/parser"
	"github.com/tfeld/trackdb/internal/track"
)

const maxUploadBytes = 32 << 20

// ImportRunner triggers one import-directory scan.
type ImportRunner interface {
	Run(ctx context.Context) error
}

type Handler struct {
	db        database.Database
	tracks    *track.Service
	importer  ImportRunner
	templates *template.Template
	log       *logrus.Logger
}

func NewHandler(db database.Database, tracks *track.Service, importer ImportRunner, log *logrus.Logger) *Handler {
	return &Handler{
		db:       db,
		tracks:   tracks,
		importer: importer,
		log:      log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/tracks")
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	router.GET("/tracks", h.TrackList)
	router.GET("/tracks/new", h.AddForm)
	router.POST("/tracks", h.Create)
	router.POST("/tracks/:id/delete", h.Delete)
	router.GET("/tracks/:id/download", h.Download)

	api := router.Group("/api")
	api.GET("/tracks", h.APITrackList)
	api.GET("/tracks/:id", h.APITrackDetail)
	api.POST("/import", h.APIImport)
}

type trackView struct {
	Track      database.Track
	Statistics *database.TrackStatistics
	Tags       []string
}

type tracksPage struct {
	Tracks       []trackView
	AllTags      []string
	SelectedTags map[string]bool
	Overall      track.Summary
	Flash        string
	Error        string
}

func (h *Handler) TrackList(c *gin.Context) {
	selected := c.QueryArray("tag")

	views, err := h.trackViews(selected)
	if err != nil {
		h.serverError(c, err)
		return
	}

	allTags, err := h.db.ListTags()
	if err != nil {
		h.serverError(c, err)
		return
	}

	page := tracksPage{
		Tracks:       views,
		AllTags:      allTags,
		SelectedTags: map[string]bool{},
		Overall:      overall(views),
		Flash:        c.Query("flash"),
		Error:        c.Query("error"),
	}
	for _, tag := range selected {
		page.SelectedTags[tag] = true
	}

	h.render(c, "tracks.html", page)
}

func (h *Handler) trackViews(selectedTags []string) ([]trackView, error) {
	tracks, err := h.db.FilterTracksByTags(selectedTags)
	if err != nil {
		return nil, err
	}

	views := make([]trackView, 0, len(tracks))
	for _, t := range tracks {
		view := trackView{Track: t}

		stats, err := h.db.GetStatistics(t.ID)
		if err != nil && !errors.Is(err, database.ErrTrackNotFound) {
			return nil, err
		}
		view.Statistics = stats

		if view.Tags, err = h.db.TagsForTrack(t.ID); err != nil {
			return nil, err
		}

		views = append(views, view)
	}

	return views, nil
}

func overall(views []trackView) track.Summary {
	var stats []database.TrackStatistics
	for _, v := range views {
		if v.Statistics != nil {
			stats = append(stats, *v.Statistics)
		}
	}
	return track.Overall(stats)
}

type addPage struct {
	AllTags []string
	Error   string
}

func (h *Handler) AddForm(c *gin.Context) {
	allTags, err := h.db.ListTags()
	if err != nil {
		h.serverError(c, err)
		return
	}

	h.render(c, "add.html", addPage{
		AllTags: allTags,
		Error:   c.Query("error"),
	})
}

func (h *Handler) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("gpx-file")
	if err != nil {
		h.redirectWithError(c, "/tracks/new", "No file uploaded")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		h.redirectWithError(c, "/tracks/new", "File too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.serverError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.serverError(c, err)
		return
	}

	tags := c.PostFormArray("tag-select")
	for _, tag := range strings.Split(c.PostForm("new-tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	created, err := h.tracks.Add(c.Request.Context(), track.Upload{
		Filename: fileHeader.Filename,
		Name:     c.PostForm("name"),
		Tags:     tags,
		Data:     data,
	})
	if err != nil {
		if msg, ok := userMessage(err); ok {
			h.redirectWithError(c, "/tracks/new", msg)
			return
		}
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/tracks?flash="+url.QueryEscape("Track '"+created.Name+"' added"))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.trackID(c)
	if !ok {
		return
	}

	deleted, err := h.tracks.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrTrackNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/tracks?flash="+url.QueryEscape("Track '"+deleted.Name+"' deleted"))
}

func (h *Handler) Download(c *gin.Context) {
	id, ok := h.trackID(c)
	if !ok {
		return
	}

	t, data, err := h.tracks.RawFile(id)
	if err != nil {
		if errors.Is(err, database.ErrTrackNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		h.serverError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+t.Name+`.gpx"`)
	c.Data(http.StatusOK, "application/gpx+xml", data)
}

type apiTrack struct {
	database.Track
	Statistics *database.TrackStatistics `json:"statistics"`
	Tags       []string                  `json:"tags"`
}

func (h *Handler) APITrackList(c *gin.Context) {
	views, err := h.trackViews(c.QueryArray("tag"))
	if err != nil {
		h.serverError(c, err)
		return
	}

	out := make([]apiTrack, 0, len(views))
	for _, v := range views {
		out = append(out, apiTrack{Track: v.Track, Statistics: v.Statistics, Tags: v.Tags})
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) APITrackDetail(c *gin.Context) {
	id, ok := h.trackID(c)
	if !ok {
		return
	}

	t, err := h.db.GetTrack(id)
	if err != nil {
		if errors.Is(err, database.ErrTrackNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "track not found"})
			return
		}
		h.serverError(c, err)
		return
	}

	stats, err := h.db.GetStatistics(id)
	if err != nil && !errors.Is(err, database.ErrTrackNotFound) {
		h.serverError(c, err)
		return
	}

	tags, err := h.db.TagsForTrack(id)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, apiTrack{Track: *t, Statistics: stats, Tags: tags})
}

func (h *Handler) APIImport(c *gin.Context) {
	if err := h.importer.Run(c.Request.Context()); err != nil {
		h.serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) trackID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) render(c *gin.Context, name string, data interface{}) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.renderTemplate(c.Writer, name, data); err != nil {
		h.log.WithError(err).WithField("template", name).Error("render failed")
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithError(c *gin.Context, target, msg string) {
	c.Redirect(http.StatusSeeOther, target+"?error="+url.QueryEscape(msg))
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.log.WithError(err).Error("request failed")
	c.AbortWithStatus(http.StatusInternalServerError)
}

// userMessage maps the parsing error taxonomy onto messages a rejected
// upload shows to the user.
func userMessage(err error) (string, bool) {
	var uerr *parser.UnsupportedFormatError
	var perr *gpx.ParseError
	var merr *gpx.MalformedTrackError

	switch {
	case errors.As(err, &uerr):
		return "Only .gpx and .fit files are supported", true
	case errors.As(err, &perr):
		return "The uploaded file could not be parsed", true
	case errors.As(err, &merr), errors.Is(err, gpx.ErrEmptyTrack):
		return "The uploaded file contains no usable track data", true
	}

	return "", false
}
