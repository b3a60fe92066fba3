// Package burnin composites SRT captions into a video with ffmpeg's subtitles
// filter.
//
// Settings map onto an ASS force_style descriptor. A real background colour
// selects the filled-box look (BorderStyle 4); otherwise captions are drawn
// with an outline and a light shadow.
package burnin
