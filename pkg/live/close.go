package live

import (
	"errors"
	"io"
	"net"

	"github.com/gorilla/websocket"
)

// classifyClose turns a reader error into CloseInfo. clean is false when the
// error should also be reported through OnError.
func classifyClose(err error, local bool) (info CloseInfo, clean bool) {
	if local {
		return CloseInfo{Local: true}, true
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		info = CloseInfo{Code: ce.Code, Reason: ce.Text}
		switch ce.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			return info, true
		}
		return info, false
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		return CloseInfo{}, true
	}
	return CloseInfo{}, false
}
