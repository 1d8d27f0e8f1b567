package csslint

import "strings"

func wordSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

var knownProperties = wordSet(`
accent-color align-content align-items align-self alignment-adjust alignment-baseline all
animation animation-delay animation-direction animation-duration
animation-fill-mode animation-iteration-count animation-name
animation-play-state animation-timing-function appearance aspect-ratio
azimuth backface-visibility backdrop-filter background background-attachment
background-blend-mode background-break background-clip background-color
background-image background-origin background-position background-position-x
background-position-y background-repeat background-size baseline-shift binding
bleed block-size bookmark-label bookmark-level bookmark-state bookmark-target
border border-block border-block-end border-block-start border-bottom
border-bottom-color border-bottom-left-radius border-bottom-right-radius
border-bottom-style border-bottom-width border-collapse border-color
border-end-end-radius border-end-start-radius border-image border-image-outset
border-image-repeat border-image-slice border-image-source border-image-width
border-inline border-inline-end border-inline-start border-left
border-left-color border-left-style border-left-width border-radius
border-right border-right-color border-right-style border-right-width
border-spacing border-start-end-radius border-start-start-radius border-style
border-top border-top-color border-top-left-radius border-top-right-radius
border-top-style border-top-width border-width bottom box-align
box-decoration-break box-direction box-flex box-flex-group box-lines
box-ordinal-group box-orient box-pack box-shadow box-sizing break-after
break-before break-inside caption-side caret-color clear clip clip-path
clip-rule color color-profile color-scheme column-count column-fill column-gap
column-rule column-rule-color column-rule-style column-rule-width column-span
column-width columns contain content counter-increment counter-reset crop cue
cue-after cue-before cursor direction display dominant-baseline
drop-initial-after-adjust drop-initial-after-align drop-initial-before-adjust
drop-initial-before-align drop-initial-size drop-initial-value elevation
empty-cells fill fill-opacity fill-rule filter fit fit-position flex
flex-basis flex-direction flex-flow flex-grow flex-shrink flex-wrap float
float-offset flood-color flood-opacity font font-family font-feature-settings
font-display font-kerning font-language-override font-size font-size-adjust font-stretch
font-style font-synthesis font-variant font-variant-caps font-variant-ligatures
font-variant-numeric font-weight gap glyph-orientation-horizontal
glyph-orientation-vertical grid grid-area grid-auto-columns grid-auto-flow
grid-auto-rows grid-column grid-column-end grid-column-gap grid-column-start
grid-gap grid-row grid-row-end grid-row-gap grid-row-start grid-template
grid-template-areas grid-template-columns grid-template-rows
hanging-punctuation height hyphenate-after hyphenate-before
hyphenate-character hyphenate-lines hyphenate-resource hyphens icon
image-orientation image-rendering image-resolution ime-mode inline-box-align
inline-size inset isolation justify-content justify-items justify-self
kerning left letter-spacing lighting-color line-break line-height
line-stacking line-stacking-ruby line-stacking-shift line-stacking-strategy
list-style list-style-image list-style-position list-style-type margin
margin-block margin-block-end margin-block-start margin-bottom margin-inline
margin-inline-end margin-inline-start margin-left margin-right margin-top
mark mark-after mark-before marker marker-end marker-mid marker-offset
marker-start marks marquee-direction marquee-loop marquee-play-count
marquee-speed marquee-style mask mask-image mask-position mask-repeat
mask-size max-block-size max-height max-inline-size max-width min-block-size
min-height min-inline-size min-width mix-blend-mode move-to nav-down nav-index
nav-left nav-right nav-up object-fit object-position opacity order orphans
outline outline-color outline-offset outline-style outline-width overflow
overflow-anchor overflow-style overflow-wrap overflow-x overflow-y
overscroll-behavior padding padding-block padding-bottom padding-inline
padding-left padding-right padding-top page page-break-after
page-break-before page-break-inside page-policy pause pause-after
pause-before perspective perspective-origin phonemes pitch pitch-range
place-content place-items place-self play-during pointer-events position
presentation-level punctuation-trim quotes rendering-intent resize rest
rest-after rest-before richness right rotate rotation rotation-point row-gap
ruby-align ruby-overhang ruby-position ruby-span scale scroll-behavior
scroll-margin scroll-padding scroll-snap-align scroll-snap-type scrollbar-color
scrollbar-width shape-outside shape-rendering size speak speak-header
speak-numeral speak-punctuation speech-rate src stop-color stop-opacity stress
string-set stroke stroke-dasharray stroke-dashoffset stroke-linecap
stroke-linejoin stroke-miterlimit stroke-opacity stroke-width tab-size
table-layout target target-name target-new target-position text-align
text-align-last text-anchor text-decoration text-decoration-color
text-decoration-line text-decoration-style text-emphasis text-height
text-indent text-justify text-outline text-overflow text-rendering
text-shadow text-size-adjust text-transform text-underline-offset
text-underline-position text-wrap top touch-action transform transform-box
transform-origin transform-style transition transition-delay
transition-duration transition-property transition-timing-function translate
unicode-bidi unicode-range user-modify user-select vertical-align visibility
voice-balance voice-duration voice-family voice-pitch voice-pitch-range
voice-rate voice-stress voice-volume volume white-space white-space-collapse
widows width will-change word-break word-spacing word-wrap writing-mode
z-index zoom
`)

var namedColors = wordSet(`
aliceblue antiquewhite aqua aquamarine azure beige bisque black
blanchedalmond blue blueviolet brown burlywood cadetblue chartreuse chocolate
coral cornflowerblue cornsilk crimson cyan darkblue darkcyan darkgoldenrod
darkgray darkgreen darkgrey darkkhaki darkmagenta darkolivegreen darkorange
darkorchid darkred darksalmon darkseagreen darkslateblue darkslategray
darkslategrey darkturquoise darkviolet deeppink deepskyblue dimgray dimgrey
dodgerblue firebrick floralwhite forestgreen fuchsia gainsboro ghostwhite gold
goldenrod gray green greenyellow grey honeydew hotpink indianred indigo ivory
khaki lavender lavenderblush lawngreen lemonchiffon lightblue lightcoral
lightcyan lightgoldenrodyellow lightgray lightgreen lightgrey lightpink
lightsalmon lightseagreen lightskyblue lightslategray lightslategrey
lightsteelblue lightyellow lime limegreen linen magenta maroon
mediumaquamarine mediumblue mediumorchid mediumpurple mediumseagreen
mediumslateblue mediumspringgreen mediumturquoise mediumvioletred
midnightblue mintcream mistyrose moccasin navajowhite navy oldlace olive
olivedrab orange orangered orchid palegoldenrod palegreen paleturquoise
palevioletred papayawhip peachpuff peru pink plum powderblue purple
rebeccapurple red rosybrown royalblue saddlebrown salmon sandybrown seagreen
seashell sienna silver skyblue slateblue slategray slategrey snow springgreen
steelblue tan teal thistle tomato turquoise violet wheat white whitesmoke
yellow yellowgreen currentcolor transparent
`)
