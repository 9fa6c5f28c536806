package extract

import "github.com/otiai10/gosseract/v2"

// extractImage runs OCR with a fixed language. Recognition failures return
// an empty string rather than an error; the caller maps blank text to a
// user-facing "unreadable document" response.
//
// A fresh client is created per call: a gosseract client wraps one tesseract
// handle and is not safe for concurrent reuse across requests.
func extractImage(path, lang string) string {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(lang); err != nil {
		return ""
	}
	if err := client.SetImage(path); err != nil {
		return ""
	}
	text, err := client.Text()
	if err != nil {
		return ""
	}
	return text
}
