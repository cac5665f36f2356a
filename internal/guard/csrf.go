package guard

import "github.com/gin-gonic/gin"

// CSRFField est le champ de formulaire qui transporte le jeton.
const CSRFField = "csrf_token"

// CSRFVerifier vérifie le jeton anti-CSRF d'un formulaire.
// La vérification elle-même est assurée par le fournisseur de session.
type CSRFVerifier interface {
	Verify(c *gin.Context, token string) bool
}

type acceptAll struct{}

func (acceptAll) Verify(*gin.Context, string) bool { return true }

// AcceptAllCSRF est le vérificateur par défaut.
var AcceptAllCSRF CSRFVerifier = acceptAll{}

// CSRFToken lit le jeton depuis le formulaire.
func CSRFToken(c *gin.Context) string {
	return c.PostForm(CSRFField)
}
