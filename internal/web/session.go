package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const cookieName = "holidaze_session"

// CookieManager stores only an opaque session id client-side; the access
// token itself stays server-side in the session store.
type CookieManager struct {
	sc *securecookie.SecureCookie
}

func NewCookieManager(hashKey, blockKey []byte) *CookieManager {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int((14 * 24 * time.Hour).Seconds()))
	return &CookieManager{sc: sc}
}

// NewSessionID mints the id a web login is stored under.
func NewSessionID() string {
	return uuid.NewString()
}

func (c *CookieManager) Set(w http.ResponseWriter, r *http.Request, sessionID string) error {
	encoded, err := c.sc.Encode(cookieName, map[string]string{"sid": sessionID})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int((14 * 24 * time.Hour).Seconds()),
	})
	return nil
}

func (c *CookieManager) Get(r *http.Request) (string, bool) {
	ck, err := r.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	val := map[string]string{}
	if err := c.sc.Decode(cookieName, ck.Value, &val); err != nil {
		return "", false
	}
	sid := val["sid"]
	return sid, sid != ""
}

func (c *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
