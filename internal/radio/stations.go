package radio

import "time"

// DefaultCatalog returns the built-in station set.
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	c.Add("trx", &Station{
		Name:      "TRX",
		Thumbnail: "https://www.dailyonline.it/application/files/6715/7583/8347/TRX_Radio.png",
		Kind:      SegmentedStream,
		Segmented: &SegmentedSource{
			IndexURL:     "https://trx.fluidstream.eu/trx.m3u8",
			SegmentBase:  "https://trx.fluidstream.eu/media-u1nu3maeq_b128000_",
			SegmentExt:   ".aac",
			PollInterval: 3 * time.Second,
			Prefetch:     2,
		},
	})

	c.Add("virgin", directStation("Virgin", "https://www.virginradio.it/resizer/-1/-1/true/Webradio-Virgin-2020-VirginRadioOnAir-1588257500754.png--.png", "https://icy.unitedradio.it/Virgin.mp3"))
	c.Add("classicrock", directStation("ClassicRock", "https://www.virginradio.it/resizer/-1/-1/true/Webradio-Virgin-2020-ClassicRock-1588062884404.png--.png", "https://icy.unitedradio.it/VirginRockClassics.mp3"))
	c.Add("rockhits", directStation("RockHits", "https://www.virginradio.it/resizer/-1/-1/true/Webradio-Virgin-2020-RockHits-1588062672845.png--.png", "https://icy.unitedradio.it/VirginRockHits.mp3"))
	c.Add("rockballads", directStation("RockBallads", "https://www.virginradio.it/resizer/-1/-1/true/Webradio-Virgin-2020-RockBallads-1588062347185.png--.png", "https://icy.unitedradio.it/Virgin_06.mp3"))
	c.Add("virgin70s", directStation("Virgin70s", "https://www.virginradio.it/resizer/-1/-1/true/Webradio-Virgin-2020-Rock70-1588062930899.png--.png", "https://icy.unitedradio.it/VirginRock70.mp3"))
	c.Add("virgin80s", directStation("Virgin80s", "https://www.virginradio.it/resizer/-1/-1/true/Webradio-Virgin-2020-Rock80-1588062718835.png--.png", "https://icy.unitedradio.it/VirginRock80.mp3"))

	for _, s := range []struct{ key, name, img, stream string }{
		{"doomed", "Doomed", "specials-400.jpg", "specials-128-mp3"},
		{"dronezone", "Dronezone", "dronezone-400.jpg", "dronezone-128-mp3"},
		{"deepspaceone", "Deepspaceone", "deepspaceone-400.jpg", "deepspaceone-128-mp3"},
		{"spacestation", "Spacestation", "spacestation-400.jpg", "spacestation-128-mp3"},
		{"vaporwaves", "Vaporwaves", "vaporwaves-400.jpg", "vaporwaves-128-mp3"},
		{"defcon", "Defcon", "defcon-400.jpg", "defcon-128-mp3"},
		{"lush", "Lush", "lush-400.jpg", "lush-128-mp3"},
		{"fluid", "Fluid", "fluid-400.jpg", "fluid-128-mp3"},
		{"poptron", "Poptron", "poptron-400.jpg", "poptron-128-mp3"},
		{"suburbsofgoa", "Suburbsofgoa", "suburbsofgoa-400.jpg", "suburbsofgoa-128-mp3"},
		{"groovesalad", "Groovesalad", "groovesalad-400.jpg", "groovesalad-128-mp3"},
		{"n5md", "N5md", "n5md-400.png", "n5md-128-mp3"},
		{"beatblender", "Beatblender", "beatblender-400.jpg", "beatblender-128-mp3"},
		{"bootliquor", "Bootliquor", "bootliquor-400.jpg", "bootliquor-128-mp3"},
		{"illstreet", "Illstreet", "illstreet-400.jpg", "illstreet-128-mp3"},
		{"thistle", "Thistle", "thistle-400.jpg", "thistle-128-mp3"},
		{"covers", "Covers", "covers-400.jpg", "covers-128-mp3"},
		{"dubstep", "Dubstep", "dubstep-400.jpg", "dubstep-128-mp3"},
		{"7soul", "7soul", "7soul-400.jpg", "7soul-128-mp3"},
		{"seventies", "Seventies", "seventies400.jpg", "seventies-128-mp3"},
		{"u80s", "U80s", "u80s-400.png", "u80s-128-mp3"},
		{"secretagent", "Secretagent", "secretagent-400.jpg", "secretagent-128-mp3"},
		{"thetrip", "Thetrip", "thetrip-400.jpg", "thetrip-128-mp3"},
		{"sonicuniverse", "Sonicuniverse", "sonicuniverse-400.jpg", "sonicuniverse-128-mp3"},
		{"indiepop", "Indiepop", "indiepop-400.jpg", "indiepop-128-mp3"},
		{"digitalis", "Digitalis", "digitalis-400.jpg", "digitalis-128-mp3"},
		{"folkfwd", "Folkfwd", "folkfwd-400.jpg", "folkfwd-128-mp3"},
		{"brfm", "Brfm", "brfm-400.jpg", "brfm-128-mp3"},
		{"missioncontrol", "Missioncontrol", "missioncontrol-400.jpg", "missioncontrol-128-mp3"},
		{"sf1033", "Sf1033", "sf1033-400.jpg", "sf1033-128-mp3"},
		{"scanner", "Scanner", "scanner-400.jpg", "scanner-128-mp3"},
		{"bagel", "Bagel", "bagel-400.jpg", "bagel-128-mp3"},
		{"live", "Live", "live-400.jpg", "live-128-mp3"},
	} {
		c.Add(s.key, directStation(s.name, "https://somafm.com/img3/"+s.img, "http://ice4.somafm.com/"+s.stream))
	}

	return c
}

func directStation(name, thumbnail, streamURL string) *Station {
	return &Station{
		Name:      name,
		Thumbnail: thumbnail,
		Kind:      DirectStream,
		Direct:    &DirectSource{StreamURL: streamURL},
	}
}
