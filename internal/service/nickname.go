package service

import "unicode/utf16"

var nicknameAdjectives = []string{
	"빠른", "조용한", "차분한", "반짝이는", "기민한", "느긋한",
	"담대한", "영리한", "유쾌한", "단단한", "날카로운", "호기심많은",
	"재빠른", "귀여운", "성실한", "용감한", "신중한", "상냥한",
	"명랑한", "든든한", "부지런한", "섬세한", "강인한", "낙천적인",
	"엉뚱한", "반듯한", "활발한", "평온한", "근엄한", "재치있는",
	"따뜻한", "맑은", "청량한", "은은한", "화려한", "대담한",
}

var nicknameNouns = []string{
	"고래", "여우", "토끼", "사자", "늑대", "고양이",
	"참새", "판다", "펭귄", "해달", "다람쥐", "올빼미",
	"수달", "햄스터", "치타", "독수리", "기린", "코끼리",
	"하이에나", "부엉이", "앵무새", "까치", "매", "두루미",
	"사슴", "말", "황소", "곰", "표범", "강아지",
	"해마", "문어", "돌고래", "나비", "벌", "오리",
}

// seedHash is a 31-multiplier hash over UTF-16 code units, so nicknames
// stay identical to the ones already shown for stored posts.
func seedHash(seed string) uint32 {
	var h uint32
	for _, unit := range utf16.Encode([]rune(seed)) {
		h = h*31 + uint32(unit)
	}
	return h
}

// Nickname derives a stable "adjective noun" pair from seed.
func Nickname(seed string) string {
	h := seedHash(seed)
	n := uint32(len(nicknameAdjectives))
	adjective := nicknameAdjectives[h%n]
	noun := nicknameNouns[(h/n)%uint32(len(nicknameNouns))]
	return adjective + " " + noun
}
