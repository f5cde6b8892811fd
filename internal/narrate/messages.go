package narrate

import (
	"embed"
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Message keys. The English key is also the fallback text.
const (
	MsgWelcome        = "Welcome to the educational game. Use the arrow keys to move and pick up the prizes."
	MsgPrizeCollected = "Prize collected."
	MsgPickup         = "You picked up a prize. Points: %d"
	MsgWon            = "You won! You collected every prize."
	MsgStatus         = "Points: %d"
)

// Locale is the fixed narration language.
var Locale = language.MustParse("es-ES")

//go:embed locales/*.yaml
var localeFS embed.FS

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

var (
	printerOnce sync.Once
	printer     *message.Printer
	printerErr  error
)

func loadPrinter() (*message.Printer, error) {
	printerOnce.Do(func() {
		b := catalog.NewBuilder(catalog.Fallback(language.English))
		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			printerErr = err
			return
		}
		for _, e := range entries {
			data, err := localeFS.ReadFile("locales/" + e.Name())
			if err != nil {
				printerErr = err
				return
			}
			var lf localeFile
			if err := yaml.Unmarshal(data, &lf); err != nil {
				printerErr = fmt.Errorf("narrate: %s: %w", e.Name(), err)
				return
			}
			tag, err := language.Parse(lf.Locale)
			if err != nil {
				printerErr = fmt.Errorf("narrate: %s: %w", e.Name(), err)
				return
			}
			for key, msg := range lf.Messages {
				if err := b.SetString(tag, key, msg); err != nil {
					printerErr = fmt.Errorf("narrate: %s: %q: %w", e.Name(), key, err)
					return
				}
			}
		}
		printer = message.NewPrinter(Locale, message.Catalog(b))
	})
	return printer, printerErr
}

// Text localizes key into Locale. Keys missing from the catalog are formatted as-is.
func Text(key string, args ...any) string {
	p, err := loadPrinter()
	if err != nil {
		return fmt.Sprintf(key, args...)
	}
	return p.Sprintf(key, args...)
}
