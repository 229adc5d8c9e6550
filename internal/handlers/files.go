package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/JayaSurya08-dev/Nimbus/internal/logging"
	mwauth "github.com/JayaSurya08-dev/Nimbus/internal/middleware/auth"
	"github.com/JayaSurya08-dev/Nimbus/internal/service"
)

const fileNotFound = "file not found"

type FileHandler struct {
	Files *service.FileService
}

func (h *FileHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "files_upload")

	userID, err := mwauth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn("upload_error", "status", 400, "reason", "no file field", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "file is empty")
	}
	src, err := fh.Open()
	if err != nil {
		l.Error("upload_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	defer src.Close()

	f, err := h.Files.Upload(ctx, userID, service.Upload{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        src,
	})
	if err != nil {
		return httpError(err, "")
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *FileHandler) List(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}

	files, err := h.Files.List(c.Request().Context(), userID)
	if err != nil {
		return httpError(err, "")
	}
	return c.JSON(http.StatusOK, files)
}

func (h *FileHandler) Search(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	res, err := h.Files.Search(c.Request().Context(), userID, c.QueryParam("q"), page, size)
	if err != nil {
		return httpError(err, "")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *FileHandler) Download(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}
	id, ok := fileID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fileNotFound)
	}

	url, err := h.Files.Download(c.Request().Context(), userID, id)
	if err != nil {
		return httpError(err, fileNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"download_url": url})
}

func (h *FileHandler) Delete(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}
	id, ok := fileID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fileNotFound)
	}

	if err := h.Files.Delete(c.Request().Context(), userID, id); err != nil {
		return httpError(err, fileNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

// fileID treats a malformed id like an unknown one.
func fileID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
