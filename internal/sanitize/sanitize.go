// Package sanitize valide les entrées utilisateur : motif en liste blanche
// sur toute la chaîne, puis détection de tout balisage.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Pattern est une expression régulière toujours ancrée sur l'entrée entière.
type Pattern struct {
	source string
	re     *regexp.Regexp
}

func Compile(expr string) (*Pattern, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, err
	}
	return &Pattern{source: expr, re: re}, nil
}

func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic("sanitize: " + err.Error())
	}
	return p
}

func (p *Pattern) String() string { return p.source }

// Match est vrai uniquement si toute la chaîne correspond.
func (p *Pattern) Match(value string) bool {
	return p != nil && p.re.MatchString(value)
}

var (
	PostPattern = MustCompile(`^[A-Za-z0-9\s.,!?\-'"]+$`)
	TextPattern = MustCompile(`^[A-Za-z0-9]+$`)
	IDPattern   = MustCompile(`^[A-Za-z0-9\-]{1,64}$`)
)

// strict supprime tout élément et commentaire ; sûr en concurrence une fois construit.
var strict = bluemonday.StrictPolicy()

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines ramène CRLF et CR à LF. Validate rejette tout CR :
// les textes venant d'un formulaire passent par ici avant validation.
func NormalizeNewlines(value string) string {
	return newlines.Replace(value)
}

// Neutralize applique la transformation anti-balisage et renvoie le texte brut obtenu.
func Neutralize(value string) string {
	return html.UnescapeString(strict.Sanitize(value))
}

// Validate accepte value si elle correspond entièrement au motif et si la
// neutralisation du balisage la laisse identique octet pour octet. Rien n'est
// nettoyé : toute modification vaut rejet (CR compris, le tokenizer le réécrit).
func Validate(value string, pattern *Pattern) bool {
	if !pattern.Match(value) {
		return false
	}
	return Neutralize(value) == value
}

// Field associe une valeur optionnelle (nil = non fournie) à son motif.
type Field struct {
	Value   *string
	Pattern *Pattern
}

// ValidateBulk s'arrête au premier champ invalide. Un champ nil passe :
// l'obligation éventuelle reste à la charge de l'appelant.
func ValidateBulk(fields []Field) bool {
	for _, f := range fields {
		if f.Value == nil {
			continue
		}
		if !Validate(*f.Value, f.Pattern) {
			return false
		}
	}
	return true
}
