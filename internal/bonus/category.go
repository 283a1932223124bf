package bonus

import "strings"

// Category labels. Fallback is returned when no keyword matches.
const (
	CategoryFruit      = "Fruit"
	CategoryGroente    = "Groente"
	CategoryBrood      = "Brood & Bakkerij"
	CategoryBroodbeleg = "Broodbeleg"
	CategoryVleeswaren = "Vleeswaren"
	CategoryZuivel     = "Zuivel"
	CategoryVlees      = "Vlees"
	CategoryVis        = "Vis"
	CategoryAlcohol    = "Alcoholische dranken"
	CategoryChips      = "Chips & Nootjes"
	CategorySnoep      = "Snoep & Koek"
	CategoryFrisdrank  = "Frisdrank"
	CategoryHuishouden = "Huishouden & Verzorging"
	CategoryPasta      = "Pasta & Rijst"
	CategoryDiepvries  = "Diepvries"
	CategoryOntbijt    = "Ontbijtgranen"
	CategoryFallback   = "Overig"
)

type categoryRule struct {
	label    string
	keywords []string
}

// categoryRules is a priority list: the first rule with a keyword contained
// in the lowercased name wins. Reordering changes classification of
// ambiguous names. Short keywords such as "ui", "sla", "rib" and "cola" are
// plain substrings, so "luiers" is Groente and "chocolade" is Frisdrank.
// Broodbeleg sits ahead of Zuivel so "pindakaas" is not read as "kaas";
// Huishouden and Pasta come last and only catch otherwise unmatched names.
var categoryRules = []categoryRule{
	{CategoryFruit, []string{
		"appel", "banaan", "sinaasappel", "peer", "druif", "aardbei",
		"blauwe bes", "framboos", "meloen", "kiwi", "mango", "ananas",
		"bananen", "peren", "druiven", "frambozen", "bosbes", "mandarijn",
		"nectarine", "pruim", "kersen", "avocado", "elstar", "jonagold",
	}},
	{CategoryGroente, []string{
		"tomaat", "komkommer", "paprika", "wortel", "ui", "knoflook", "sla",
		"spinazie", "courgette", "aubergine", "prei", "boon", "bloemkool",
		"broccoli", "champignon",
		"tomaten", "bonen", "andijvie", "witlof", "asperge", "pompoen",
		"boerenkool", "bieten", "rucola", "radijs",
	}},
	{CategoryBrood, []string{
		"brood", "stokbrood", "focaccia", "croissant", "pizza", "quiche",
		"bolletjes", "pistolet", "ciabatta", "baguette", "krentenbol", "wrap",
		"naan", "cake", "taart", "muffin", "tompouce", "vlaai",
	}},
	{CategoryVleeswaren, []string{
		"ham", "salami", "filet", "paté", "worst",
		"pate", "rookvlees", "fricandeau", "rosbief", "cervelaat", "chorizo",
		"ontbijtspek", "pastrami", "carpaccio",
	}},
	{CategoryBroodbeleg, []string{
		"pindakaas", "notenkaas", "notenpasta", "chocopasta", "chocoladepasta",
		"nutella", "speculoospasta", "jam", "confiture", "honing",
		"sandwichspread", "vruchtenhagel", "smeerkaas", "zoetbeleg", "beleg",
	}},
	{CategoryZuivel, []string{
		"melk", "yoghurt", "boter", "room", "kwark", "eier",
		"kaas", "vla", "skyr", "margarine", "halvarine", "mozzarella",
		"mascarpone", "feta", "brie", "camembert", "creme fraiche", "crème fraîche",
	}},
	{CategoryVlees, []string{
		"kip", "rund", "varken", "gehakt", "rib", "hamburger",
		"biefstuk", "speklap", "spek", "karbonade", "schnitzel", "shoarma",
		"kalkoen", "drumstick", "ossenhaas", "entrecote", "stoofvlees", "sucade",
		"lamsvlees",
	}},
	{CategoryVis, []string{
		"vis", "zalm", "tonijn", "garnaal", "haring", "kabeljauw",
		"garnalen", "makreel", "pangasius", "tilapia", "mosselen", "kibbeling",
		"lekkerbek", "sardine", "forel", "scampi",
	}},
	{CategoryAlcohol, []string{
		"bier", "wijn", "prosecco", "port", "whisky", "gin",
		"jenever", "wodka", "vodka", "likeur", "cava", "rosé",
		"pils", "radler", "cider", "heineken", "grolsch", "amstel", "hertog jan",
	}},
	{CategoryFrisdrank, []string{
		"cola", "fanta", "sprite", "ice tea", "sap", "water",
		"icetea", "limonade", "siroop", "energy", "red bull", "tonic", "7up",
		"pepsi", "fristi", "smoothie", "frisdrank",
	}},
	{CategoryChips, []string{
		"chips", "noot", "popcorn", "borrel", "snack",
		"pinda", "cashew", "amandel", "pistache", "nachos", "pringles",
		"doritos", "zoutjes", "crackers", "toastjes", "kroepoek", "pretzel",
	}},
	{CategorySnoep, []string{
		"chocola", "koek", "snoep", "m&m", "haribo", "stroopwafel",
		"winegum", "drop", "toffee", "lolly", "kauwgom", "mentos", "biscuit",
		"speculaas", "marsepein", "bonbon", "twix", "snickers",
	}},
	{CategoryDiepvries, []string{
		"diepvries", "ijs", "frozen",
		"magnum", "ben & jerry", "friet", "patat", "kroket", "frikandel",
		"bitterbal", "loempia",
	}},
	{CategoryOntbijt, []string{
		"muesli", "cornflake", "ontbijt",
		"granola", "havermout", "brinta", "choco pops", "kellogg", "weetabix",
		"havervlokken",
	}},
	{CategoryHuishouden, []string{
		"wasmiddel", "afwasmiddel", "vaatwas", "toiletpapier", "keukenpapier",
		"wc papier", "tandpasta", "douchegel", "deodorant", "zeep",
		"wasverzachter", "schoonmaak", "maandverband", "scheermes", "tissues",
		"vuilniszak", "allesreiniger", "bleekmiddel",
	}},
	{CategoryPasta, []string{
		"pasta", "spaghetti", "macaroni", "penne", "fusilli", "lasagne",
		"tagliatelle", "ravioli", "tortellini", "gnocchi", "rijst", "noedels",
		"couscous", "bulgur", "quinoa",
	}},
}

// Categorize maps a free-text product name to a category label. It always
// returns a label; names without a known keyword map to CategoryFallback.
func Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.label
			}
		}
	}
	return CategoryFallback
}

// Categories returns the category labels in priority order, followed by the
// fallback label.
func Categories() []string {
	out := make([]string, 0, len(categoryRules)+1)
	for _, rule := range categoryRules {
		out = append(out, rule.label)
	}
	return append(out, CategoryFallback)
}

// IsCategory reports whether label is one of the known category labels.
func IsCategory(label string) bool {
	for _, known := range Categories() {
		if known == label {
			return true
		}
	}
	return false
}
