package refine

// Symbol glyph mapping. Bullet, check and arrow glyphs from symbol fonts
// arrive either as ASCII-range code points (dingbat fonts reuse the Latin
// byte range) or as private-use code points (Wingdings-style fonts mapped
// into U+F000..). Both are rewritten to their visual Unicode equivalents so
// the extracted text reads the way the page looks.

// dingbatGlyphs maps the printable ASCII range (0x20-0x7F) of a ZapfDingbats
// style font to visual Unicode. Zero means no glyph at that slot.
var dingbatGlyphs = [96]rune{
	0x0020, 0x2701, 0x2702, 0x2703, 0x2704, 0x260E, 0x2706, 0x2707, // 0x20-0x27
	0x2708, 0x2709, 0x261B, 0x261E, 0x270C, 0x270D, 0x270E, 0x270F, // 0x28-0x2F
	0x2710, 0x2711, 0x2712, 0x2713, 0x2714, 0x2715, 0x2716, 0x2717, // 0x30-0x37
	0x2718, 0x2719, 0x271A, 0x271B, 0x271C, 0x271D, 0x271E, 0x271F, // 0x38-0x3F
	0x2720, 0x2721, 0x2722, 0x2723, 0x2724, 0x2725, 0x2726, 0x2727, // 0x40-0x47
	0x2605, 0x2729, 0x272A, 0x272B, 0x272C, 0x272D, 0x272E, 0x272F, // 0x48-0x4F
	0x2730, 0x2731, 0x2732, 0x2733, 0x2734, 0x2735, 0x2736, 0x2737, // 0x50-0x57
	0x2738, 0x2739, 0x273A, 0x273B, 0x273C, 0x273D, 0x273E, 0x273F, // 0x58-0x5F
	0x2740, 0x2741, 0x2742, 0x2743, 0x2744, 0x2745, 0x2746, 0x2747, // 0x60-0x67
	0x2748, 0x2749, 0x274A, 0x274B, 0x25CF, 0x274D, 0x25A0, 0x274F, // 0x68-0x6F
	0x2750, 0x2751, 0x2752, 0x25B2, 0x25BC, 0x25C6, 0x2756, 0x25D7, // 0x70-0x77
	0x2758, 0x2759, 0x275A, 0x275B, 0x275C, 0x275D, 0x275E, 0x0000, // 0x78-0x7F
}

// privateUseGlyphs maps the private-use code points most commonly produced
// by Wingdings/Webdings-mapped fonts to visual equivalents. Unmapped
// private-use characters fall back to a generic bullet.
var privateUseGlyphs = map[rune]rune{
	0xF06C: '●',
	0xF06E: '■',
	0xF070: '❒',
	0xF071: '❑',
	0xF073: '▲',
	0xF074: '▼',
	0xF075: '◆',
	0xF076: '❖',
	0xF0A1: '○',
	0xF0A7: '▪',
	0xF0A8: '□',
	0xF0B0: '·',
	0xF0B7: '•',
	0xF0D8: '➢',
	0xF0DC: '➜',
	0xF0E0: '➔',
	0xF0E8: '➨',
	0xF0F0: '⇨',
	0xF0FC: '✓',
	0xF0FE: '☑',
}

const fallbackBullet = '•'

// mapSymbols rewrites a hit's text to visual Unicode. For hits drawn from a
// recognized symbol/dingbat font the ASCII range goes through the dingbat
// table; private-use code points are mapped for every hit, since they never
// carry meaning of their own in extracted text.
func (p *Pipeline) mapSymbols(h Hit) string {
	mapped := false
	runes := []rune(h.Str)
	for i, r := range runes {
		switch {
		case r >= 0xE000 && r <= 0xF8FF:
			if v, ok := privateUseGlyphs[r]; ok {
				runes[i] = v
			} else {
				runes[i] = fallbackBullet
			}
			mapped = true
		case h.SymbolFont && r >= 0x20 && r < 0x80:
			if v := dingbatGlyphs[r-0x20]; v != 0 {
				runes[i] = v
				mapped = true
			}
		}
	}
	if !mapped {
		return h.Str
	}
	return string(runes)
}
