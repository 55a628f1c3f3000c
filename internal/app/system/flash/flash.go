// internal/app/system/flash/flash.go
package flash

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const key = "_flash"

// SessionGetter returns the request's session. auth.SessionManager
// satisfies it.
type SessionGetter interface {
	GetSession(r *http.Request) (*sessions.Session, error)
}

// Set stores msg for the next request.
func Set(sg SessionGetter, w http.ResponseWriter, r *http.Request, msg string) error {
	sess, err := sg.GetSession(r)
	if err != nil {
		return err
	}
	sess.AddFlash(msg, key)
	return sess.Save(r, w)
}

// Pop returns the pending message, if any, and clears it. It returns "" on
// any session error.
func Pop(sg SessionGetter, w http.ResponseWriter, r *http.Request) string {
	sess, err := sg.GetSession(r)
	if err != nil {
		return ""
	}
	flashes := sess.Flashes(key)
	if len(flashes) == 0 {
		return ""
	}
	_ = sess.Save(r, w)
	msg, _ := flashes[len(flashes)-1].(string)
	return msg
}
