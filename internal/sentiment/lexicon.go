package sentiment

// lexicon is an AFINN-style word list scored from -5 to +5, trimmed to the
// vocabulary that shows up in spoken video commentary.
var lexicon = map[string]int{
	// strongly positive
	"amazing": 4, "awesome": 4, "brilliant": 4, "fantastic": 4, "incredible": 4,
	"outstanding": 5, "superb": 5, "thrilled": 5, "breathtaking": 5, "wonderful": 4,
	"masterpiece": 4, "perfect": 3, "stunning": 4, "spectacular": 4, "phenomenal": 4,
	"ecstatic": 4, "euphoric": 4, "exceptional": 4, "magnificent": 4, "marvelous": 3,
	"love": 3, "loved": 3, "loving": 2, "loves": 3, "excellent": 3, "excited": 3,
	"exciting": 3, "beautiful": 3, "delighted": 3, "delightful": 3, "glad": 3,
	"happy": 3, "joy": 3, "fun": 4, "funny": 4, "hilarious": 2, "win": 4, "wins": 4,
	"winning": 4, "won": 3, "best": 3, "great": 3, "impressive": 3, "favorite": 2,
	"yay": 3, "wow": 4, "woohoo": 3, "congrats": 2, "congratulations": 2, "blessed": 3,

	// mildly positive
	"good": 3, "nice": 3, "cool": 1, "like": 2, "liked": 2, "enjoy": 2, "enjoyed": 2,
	"helpful": 2, "useful": 2, "easy": 1, "interesting": 2, "proud": 2, "thanks": 2,
	"thank": 2, "grateful": 3, "hope": 2, "hopeful": 2, "smile": 2, "smiling": 2,
	"laugh": 1, "better": 2, "clean": 2, "comfortable": 2, "confident": 2, "creative": 2,
	"fresh": 1, "friendly": 2, "gorgeous": 3, "healthy": 2, "improve": 2, "improved": 2,
	"inspired": 2, "inspiring": 3, "kind": 2, "lucky": 3, "pleased": 3, "recommend": 2,
	"relaxed": 2, "satisfied": 2, "success": 2, "successful": 3, "support": 2,
	"sweet": 2, "tasty": 2, "delicious": 3, "worth": 2, "yes": 1, "agree": 1,
	"calm": 2, "care": 2, "cheer": 2, "clever": 2, "curious": 1, "solid": 2,

	// mildly negative
	"bad": -3, "boring": -3, "confused": -2, "confusing": -2, "difficult": -1,
	"disappointed": -2, "disappointing": -2, "hard": -1, "mess": -2, "messy": -2,
	"mistake": -2, "mistakes": -2, "problem": -2, "problems": -2, "sad": -2,
	"sorry": -1, "tired": -2, "ugly": -3, "unfortunately": -2, "weird": -2,
	"worried": -3, "worry": -3, "annoying": -2, "annoyed": -2, "broke": -1,
	"broken": -1, "fail": -2, "failed": -2, "failure": -2, "fear": -2, "lost": -3,
	"lose": -3, "miss": -2, "missed": -2, "no": -1, "pain": -2, "painful": -2,
	"poor": -2, "risk": -2, "scared": -2, "slow": -2, "stress": -1, "stressed": -2,
	"stuck": -2, "struggle": -2, "struggling": -2, "wrong": -2, "wasted": -2,
	"waste": -1, "upset": -2, "unhappy": -2, "doubt": -1, "bug": -2, "crash": -2,

	// strongly negative
	"awful": -3, "terrible": -3, "horrible": -3, "hate": -3, "hated": -3,
	"hates": -3, "disgusting": -3, "worst": -3, "angry": -3, "furious": -3,
	"nightmare": -3, "disaster": -2, "pathetic": -2, "stupid": -2, "useless": -2,
	"ruined": -2, "damn": -4, "dammit": -4, "hell": -4, "crap": -3, "sucks": -3,
	"heartbroken": -3, "devastated": -2, "miserable": -3, "tragic": -2, "panic": -3,
	"catastrophe": -3, "catastrophic": -4, "outrage": -3, "outrageous": -3,
}

// negators flip the score of the word that follows them
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "don't": true, "dont": true,
	"isn't": true, "isnt": true, "wasn't": true, "wasnt": true, "can't": true,
	"cant": true, "won't": true, "didn't": true, "didnt": true, "doesn't": true,
	"doesnt": true, "aren't": true, "arent": true, "without": true,
}
