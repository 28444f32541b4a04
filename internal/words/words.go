// internal/words/words.go
package words

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// List is a pool of secret words. It satisfies game.WordSource.
type List []string

// RandomWord picks a word uniformly at random. An empty list yields "".
func (l List) RandomWord(rng *rand.Rand) string {
	if len(l) == 0 {
		return ""
	}
	return l[rng.Intn(len(l))]
}

// Load reads a word list with one word per line. Blank lines, lines starting with '#'
// and duplicates are skipped.
func Load(path string) (List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer f.Close()

	var out List
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("word list %s is empty", path)
	}
	return out, nil
}

// Default is the built-in German word list.
var Default = List{
	"Apfel", "Baum", "Haus", "Auto", "Fluss", "Tisch", "Stuhl", "Mond", "Sonne",
	"Stern", "Wolke", "Regen", "Schnee", "Blume", "Wald", "Berg", "Meer", "Strand",
	"Himmel", "Vogel", "Fisch", "Hund", "Katze", "Pferd", "Kuh", "Schaf", "Löwe",
	"Tiger", "Bär", "Wolf", "Fuchs", "Reh", "Hase", "Schlange", "Krokodil", "Adler",
	"Falke", "Eule", "Pinguin", "Delfin", "Wal", "Haifisch", "Klippe", "Insel",
	"Wüste", "Oase", "Vulkan", "Höhle", "See", "Teich", "Bach", "Wasserfall",
	"Nacht", "Stein", "Sand", "Erde", "Tornado", "Hurrikan", "Blitz",
	"Donner", "Nebel", "Frost", "Tau", "Regenbogen", "Brücke", "Turm", "Schloss",
	"Palast", "Kirche", "Tempel", "Hütte", "Zelt", "Villa", "Wohnung",
	"Büro", "Schule", "Universität", "Krankenhaus", "Markt",
	"Supermarkt", "Restaurant", "Café", "Bar", "Park", "Garten", "Spielplatz",
	"Stadion", "Theater", "Kino", "Museum", "Zoo", "Aquarium", "Flughafen",
	"Bahnhof", "Hafen", "Straße", "Autobahn", "Kreuzung", "Laterne",
	"Ampel", "Zaun", "Tür", "Fenster", "Dach", "Teppich", "Lampe", "Spiegel",
	"Schrank", "Sofa", "Bett", "Kissen", "Vorhang", "Uhr", "Telefon", "Computer",
	"Laptop", "Fernseher", "Radio", "Kamera", "Kopfhörer", "Buch", "Bleistift",
	"Radiergummi", "Schere", "Pinsel", "Leinwand", "Kerze", "Schlüssel", "Ring",
	"Brille", "Hut", "Schal", "Handschuh", "Mantel", "Stiefel", "Rucksack", "Koffer",
	"Messer", "Gabel", "Löffel", "Teller", "Tasse", "Pfanne", "Kühlschrank",
	"Mikrowelle", "Toaster", "Kaffeemaschine", "Besen", "Eimer", "Hammer",
	"Schraube", "Säge", "Tastatur", "Glühbirne", "Batterie", "Streichholz",
	"Fackel", "Kompass", "Globus", "Teleskop", "Mikroskop", "Thermometer",
	"Kalender", "Tagebuch", "Briefmarke", "Zeitung", "Gitarre", "Klavier",
	"Schlagzeug", "Mikrofon", "Ballett", "Feuerwerk", "Würfel", "Teddybär",
	"Fahrrad", "Skateboard", "Schlitten", "Surfbrett", "Schiff", "Hubschrauber",
	"Rakete", "Astronaut", "Satellit", "Roboter", "Drohne", "Pirat", "Schatz",
	"Pizza", "Ritter", "König", "Prinzessin", "Drache",
}
