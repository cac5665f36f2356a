// Package media valide les fichiers envoyés par les utilisateurs.
//
// Trois contrôles indépendants, dans cet ordre : taille, extension, puis type
// réel détecté à partir du contenu (magic numbers). Seul le dernier fait foi :
// l'extension se falsifie en renommant le fichier.
package media

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/apperr"
)

const DefaultMaxBytes int64 = 50 * 1024 * 1024

var (
	DefaultExtensions = []string{"png", "jpg", "jpeg", "gif", "mp4", "mov"}
	DefaultMIMETypes  = []string{"image/jpeg", "image/png", "image/gif", "video/mp4", "video/quicktime"}
)

type Policy struct {
	MaxBytes   int64
	Extensions []string
	MIMETypes  []string
}

func DefaultPolicy() Policy {
	return Policy{
		MaxBytes:   DefaultMaxBytes,
		Extensions: DefaultExtensions,
		MIMETypes:  DefaultMIMETypes,
	}
}

// Validator est immuable après construction.
type Validator struct {
	maxBytes   int64
	extensions map[string]struct{}
	mimeTypes  map[string]struct{}
}

func NewValidator(p Policy) *Validator {
	v := &Validator{
		maxBytes:   p.MaxBytes,
		extensions: make(map[string]struct{}, len(p.Extensions)),
		mimeTypes:  make(map[string]struct{}, len(p.MIMETypes)),
	}
	if v.maxBytes <= 0 {
		v.maxBytes = DefaultMaxBytes
	}
	for _, ext := range p.Extensions {
		v.extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	for _, m := range p.MIMETypes {
		v.mimeTypes[strings.ToLower(m)] = struct{}{}
	}
	return v
}

func (v *Validator) MaxBytes() int64 { return v.maxBytes }

// CheckSize : au-delà du plafond FileTooLarge, zéro octet EmptyFile.
func (v *Validator) CheckSize(n int64) error {
	if n > v.maxBytes {
		return apperr.New(apperr.FileTooLarge)
	}
	if n == 0 {
		return apperr.New(apperr.EmptyFile)
	}
	return nil
}

// CheckExtension regarde le suffixe après le dernier point, sans tenir compte de la casse.
func (v *Validator) CheckExtension(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	_, ok := v.extensions[strings.ToLower(filename[i+1:])]
	return ok
}

// CheckContent détecte le type réel du contenu, indépendamment du nom et des en-têtes.
func (v *Validator) CheckContent(data []byte) (bool, string) {
	detected := mimetype.Detect(data).String()
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	detected = strings.ToLower(strings.TrimSpace(detected))
	_, ok := v.mimeTypes[detected]
	return ok, detected
}
