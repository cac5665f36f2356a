package post

import "encoding/base64"

// EncodeContent : le texte validé est stocké encodé en base64 standard.
func EncodeContent(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

func DecodeContent(stored string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
