// Package guard regroupe les contrôles d'accès communs aux routes d'écriture.
package guard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/apperr"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/logs"
)

// IdentityKey est la clé du contexte gin renseignée par le middleware d'authentification.
const IdentityKey = "user_id"

// IsDirectCall vaut true quand la requête ne porte aucun en-tête Referer.
// Un Referer présent mais vide n'est pas un appel direct.
func IsDirectCall(r *http.Request) bool {
	return len(r.Header.Values("Referer")) == 0
}

// DenyDirectCalls rejette les appels directs avant tout handler.
func DenyDirectCalls() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsDirectCall(c.Request) {
			logs.LogJSON("WARN", "Direct call denied", map[string]interface{}{
				"route":  c.FullPath(),
				"method": c.Request.Method,
				"ip":     c.ClientIP(),
			})
			apperr.Respond(c, apperr.New(apperr.DirectCallDenied))
			return
		}
		c.Next()
	}
}

// Identity renvoie l'utilisateur authentifié de la requête.
func Identity(c *gin.Context) (string, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// AuthorizeOwner : seul le propriétaire authentifié est autorisé.
func AuthorizeOwner(identity, owner string) bool {
	return identity != "" && identity == owner
}
