package auth

import (
	"net/http"
	"time"
)

func setCookie(w http.ResponseWriter, name, value string, dur time.Duration) {
	cookie := &http.Cookie{
		Path:     "/",
		Name:     name,
		Value:    value,
		HttpOnly: true,
	}
	if dur > 0 {
		cookie.Expires = time.Now().Add(dur)
	} else {
		cookie.MaxAge = -1
	}

	http.SetCookie(w, cookie)
}
