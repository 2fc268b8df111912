package view

import "golang.org/x/text/language"

// Copy holds the static UI labels for one locale. Error messages coming from
// the state are shown verbatim and are not part of Copy.
type Copy struct {
	Locale       string
	Title        string
	Tagline      string
	PromptLabel  string
	PromptHint   string
	RatioLabel   string
	SubmitIdle   string
	SubmitBusy   string
	PanelLoading string
	PanelEmpty   string
	ImageAlt     string
}

var (
	supportedLocales = []language.Tag{language.English, language.Indonesian}
	localeMatcher    = language.NewMatcher(supportedLocales)
)

var copies = map[language.Tag]Copy{
	language.English: {
		Locale:       "en",
		Title:        "Bikini Image Generator",
		Tagline:      "Create stunning AI-generated images with a simple text prompt.",
		PromptLabel:  "1. Describe your image",
		PromptHint:   "e.g., A woman in a red bikini on a white sand beach",
		RatioLabel:   "2. Select Aspect Ratio",
		SubmitIdle:   "Generate Image",
		SubmitBusy:   "Generating...",
		PanelLoading: "Creating your image...",
		PanelEmpty:   "Your generated image will appear here.",
		ImageAlt:     "Generated",
	},
	language.Indonesian: {
		Locale:       "id",
		Title:        "Generator Gambar Bikini",
		Tagline:      "Buat gambar AI yang memukau hanya dengan satu prompt teks.",
		PromptLabel:  "1. Jelaskan gambar Anda",
		PromptHint:   "mis., Wanita berbikini merah di pantai pasir putih",
		RatioLabel:   "2. Pilih Rasio Aspek",
		SubmitIdle:   "Buat Gambar",
		SubmitBusy:   "Sedang membuat...",
		PanelLoading: "Gambar Anda sedang dibuat...",
		PanelEmpty:   "Gambar Anda akan muncul di sini.",
		ImageAlt:     "Hasil",
	},
}

// CopyFor returns the labels best matching locale, an Accept-Language style
// list or a single tag. English is the fallback.
func CopyFor(locale string) Copy {
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return copies[language.English]
	}
	_, idx, _ := localeMatcher.Match(tags...)
	return copies[supportedLocales[idx]]
}

// Locales lists the supported locale codes.
func Locales() []string {
	out := make([]string, 0, len(supportedLocales))
	for _, tag := range supportedLocales {
		out = append(out, copies[tag].Locale)
	}
	return out
}
