// Package session décrit la régénération de session après une écriture.
package session

import "github.com/gin-gonic/gin"

// Regenerator remplace l'identifiant de session de la requête courante.
type Regenerator interface {
	Regenerate(c *gin.Context) error
}

// Noop ne fait rien ; utile quand aucune session n'est gérée par ce service.
type Noop struct{}

func (Noop) Regenerate(*gin.Context) error { return nil }
