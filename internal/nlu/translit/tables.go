package translit

import "github.com/vaanilabs/vaani/internal/nlu"

// fallbackTables holds the per-language replacement pairs applied when no
// external service is available. Pair order is precedence order for
// [strings.Replacer]: multi-word station names come first so "mg road" is
// not shredded by the single-word entries, and longer word forms precede
// their prefixes ("karo" before "kar").
var fallbackTables = map[nlu.Language][][2]string{
	nlu.LangHindi: {
		{"electronic city", "इलेक्ट्रॉनिक सिटी"},
		{"banashankari", "बनशंकरी"},
		{"indiranagar", "इंदिरानगर"},
		{"koramangala", "कोरमंगला"},
		{"marathalli", "मराठहल्ली"},
		{"whitefield", "व्हाइटफील्ड"},
		{"jayanagar", "जयनगर"},
		{"majestic", "मैजेस्टिक"},
		{"mg road", "एमजी रोड"},
		{"airport", "एयरपोर्ट"},

		{"can you", "क्या आप"},
		{"tickets", "टिकट"},
		{"chahiye", "चाहिए"},
		{"please", "कृपया"},
		{"ticket", "टिकट"},
		{"kitna", "कितना"},
		{"paisa", "पैसा"},
		{"madad", "मदद"},
		{"there", "वहाँ"},
		{"jaana", "जाना"},
		{"jana", "जाना"},
		{"book", "बुक"},
		{"from", "से"},
		{"help", "मदद"},
		{"karo", "करो"},
		{"kar", "कर"},
		{"hey", "अरे"},
		{"tak", "तक"},
		{"to", "तक"},
		{"se", "से"},
	},

	nlu.LangMarathi: {
		{"electronic city", "इलेक्ट्रॉनिक शहर"},
		{"banashankari", "बानशंकरी"},
		{"indiranagar", "इंदिरानगर"},
		{"koramangala", "कोरमंगला"},
		{"marathalli", "मराठाहल्ली"},
		{"whitefield", "व्हाईटफील्ड"},
		{"jayanagar", "जयनगर"},
		{"majestic", "मेजेस्टिक"},
		{"mg road", "एमजी रोड"},
		{"airport", "एअरपोर्ट"},

		{"can you", "तुम्ही"},
		{"paryant", "पर्यंत"},
		{"tickets", "तिकीट"},
		{"please", "कृपया"},
		{"pahije", "पाहिजे"},
		{"ticket", "तिकीट"},
		{"pasun", "पासून"},
		{"paise", "पैसे"},
		{"madad", "मदत"},
		{"there", "तिथे"},
		{"jaane", "जाणे"},
		{"jane", "जाणे"},
		{"book", "बुक"},
		{"from", "पासून"},
		{"help", "मदत"},
		{"kiti", "किती"},
		{"kara", "करा"},
		{"kar", "कर"},
		{"hey", "अरे"},
		{"to", "पर्यंत"},
	},

	nlu.LangKannada: {
		{"indiranagar", "ಇಂದಿರಾನಗರ"},
		{"whitefield", "ವೈಟ್‌ಫ�ೀಲ್ಡ್"},
		{"majestic", "ಮೆಜೆಸ್ಟಿಕ್"},
		{"mg road", "ಎಂ ಜಿ ರೋಡ್"},
		{"ticket", "ಟಿಕೆಟ್"},
		{"book", "ಬುಕ್"},
	},

	nlu.LangTamil: {
		{"indiranagar", "இந்திரா நகர்"},
		{"whitefield", "வைட்ஃபீல்ட்"},
		{"majestic", "மாஜஸ்டிக்"},
		{"mg road", "எம் ஜி ரோட்"},
		{"ticket", "டிக்கெட்"},
		{"book", "புக்"},
	},

	nlu.LangTelugu: {
		{"indiranagar", "ఇందిరానగర్"},
		{"whitefield", "వైట్‌ఫీల్డ్"},
		{"majestic", "మెజెస్టిక్"},
		{"mg road", "ఎం జి రోడ్"},
		{"ticket", "టిక్కెట్"},
		{"book", "బుక్"},
	},
}
