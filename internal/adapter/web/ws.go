package web

import (
	"ImageAnalyst/internal/ai"
	"ImageAnalyst/internal/app/analyst"
	imgproc "ImageAnalyst/internal/service/image"
	"errors"
	"image"
	"net/http"

	"github.com/gorilla/websocket"
)

const (
	statusAnalyzing = "analyzing"
	statusDone      = "done"
	statusError     = "error"
)

// wsRequest одно сообщение клиента: картинка передаётся в base64.
type wsRequest struct {
	APIKey   string  `json:"api_key"`
	Prompt   string  `json:"prompt"`
	Image    string  `json:"image"`
	Filename string  `json:"filename,omitempty"`
	Crop     *wsCrop `json:"crop,omitempty"`
}

type wsCrop struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// wsEvent html ответ, уже переведённый из markdown, чтобы странице не нужен был свой рендерер.
type wsEvent struct {
	Status  string `json:"status"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleWS принимает запросы на анализ по одному и сообщает о ходе выполнения:
// сначала "analyzing", затем "done" с текстом или "error" с классом ошибки.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.cfg.MaxUploadBytes*2 + 1<<20)

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Infow("websocket closed", "error", err)
			}
			return
		}

		sess, err := sessionFromWS(req)
		if err != nil {
			if werr := conn.WriteJSON(wsEvent{Status: statusError, Kind: ai.KindRequest.String(), Message: err.Error()}); werr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(wsEvent{Status: statusAnalyzing}); err != nil {
			return
		}
		res := s.analyst.Analyze(r.Context(), sess)
		ev := wsEvent{Status: statusDone, Text: res.Text}
		if !res.OK() {
			ev = wsEvent{Status: statusError, Kind: res.Kind.String(), Message: res.Message}
		} else if html, err := s.renderMarkdown(res.Text); err == nil {
			ev.HTML = string(html)
		} else {
			s.logger.Warnw("Не удалось отрисовать markdown", "error", err)
		}
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

func sessionFromWS(req wsRequest) (analyst.Session, error) {
	data, err := ai.DecodeImage(req.Image)
	if err != nil {
		return analyst.Session{}, errors.New("image must be base64 encoded")
	}
	sess := analyst.Session{
		Credential: req.APIKey,
		Prompt:     req.Prompt,
		Upload:     data,
		Filename:   req.Filename,
	}
	if req.Crop != nil {
		var rect image.Rectangle
		rect, err = imgproc.CropRect(req.Crop.X, req.Crop.Y, req.Crop.Width, req.Crop.Height)
		if err != nil {
			return analyst.Session{}, err
		}
		sess.Crop = &rect
	}
	return sess, nil
}
