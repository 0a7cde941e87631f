package sources

// adPatterns strips the injected promo lines the aggregator templates
// append to chapter bodies.
var adPatterns = []string{
	`一秒记住.*`,
	`天才一秒记住本站地址.*`,
	`手机版阅读网址.*`,
	`最新章节！$`,
	`(?i)www\.[a-z0-9]+\.(com|net|cc|la|org)`,
}

// biqugeTemplate is the layout shared by the biquge-clone sites. Clones
// differ only in host and path shape; the markup is identical.
func biqugeTemplate(base string) SelectorConfig {
	return SelectorConfig{
		BaseURL:       base,
		BookPath:      "/book/%s/",
		ChapterPath:   "/book/%s.html",
		TitleSel:      "#info h1",
		AuthorSel:     "#info p a",
		CoverSel:      "#fmimg img",
		TOCSel:        "#list dd a",
		BodySel:       "#content",
		HeadingSel:    ".bookname h1",
		SearchPath:    "/search.php?q=%s",
		SearchRowSel:  ".result-item",
		SearchLinkSel: ".result-game-item-title a",
		CleanPatterns: adPatterns,
	}
}

// builtinConfigs maps site IDs from the capability table to selector
// configs for the non-encrypted sites the generic source can parse.
// One row per site, sorted. Encrypted sites (qidian) register their own
// dedicated source; sites absent here stay capability-only until an
// overlay or a dedicated parser lands.
var builtinConfigs = map[string]SelectorConfig{
	"b520":     biqugeTemplate("http://www.b520.cc"),
	"biquge":   biqugeTemplate("https://www.biquge.la"),
	"i25zw":    biqugeTemplate("https://www.i25zw.com"),
	"shuhaige": biqugeTemplate("https://www.shuhaige.net"),
	"xshbook":  biqugeTemplate("http://www.xshbook.com"),

	"dxmwx": {
		BaseURL:       "https://www.dxmwx.org",
		BookPath:      "/chapter/%s.html",
		ChapterPath:   "/read/%s.html",
		TitleSel:      "h1 span",
		AuthorSel:     ".margin0 a",
		TOCSel:        `span[style] a[href^="/read/"]`,
		BodySel:       "#Lab_Contents",
		HeadingSel:    "#ChapterTitle",
		SearchPath:    "/list/%s.html",
		SearchRowSel:  ".margin20",
		SearchLinkSel: "a",
		CleanPatterns: adPatterns,
	},
	"guidaye": {
		BaseURL:     "https://b.guidaye.com",
		BookPath:    "/%s/",
		ChapterPath: "/%s.html",
		TitleSel:    "h1",
		AuthorSel:   ".category-description-author a",
		TOCSel:      "#main ul li a",
		BodySel:     "#content",
		HeadingSel:  "h1",
	},
	"hetushu": {
		BaseURL:       "https://www.hetushu.com",
		BookPath:      "/book/%s/index.html",
		ChapterPath:   "/book/%s.html",
		TitleSel:      ".book_info h2",
		AuthorSel:     ".book_info a",
		CoverSel:      ".book_info img",
		TOCSel:        "#dir dd a",
		VolumeSel:     "#dir dt",
		BodySel:       "#content",
		BodyXPath:     `//div[@id="content"]`,
		HeadingSel:    "#content .h2",
		SearchPath:    "/search/?keyword=%s",
		SearchRowSel:  ".book_info",
		SearchLinkSel: "h2 a",
	},
	"laoyaoxs": {
		BaseURL:     "https://www.laoyaoxs.org",
		BookPath:    "/info/%s.html",
		ChapterPath: "/list/%s.html",
		TitleSel:    ".d_info h1",
		AuthorSel:   ".d_info .p_author a",
		TOCSel:      ".d_list li a",
		BodySel:     ".d_content",
		HeadingSel:  ".d_title h1",
	},
	"quanben5": {
		BaseURL:       "https://quanben5.com",
		BookPath:      "/n/%s/xiaoshuo.html",
		ChapterPath:   "/n/%s.html",
		TitleSel:      "h1.title",
		AuthorSel:     ".info p a",
		CoverSel:      ".pic img",
		TOCSel:        "ul.list li a",
		BodySel:       "#content",
		HeadingSel:    "h1.title1",
		SearchPath:    "/search.html?t=1&q=%s",
		SearchRowSel:  ".pic_txt_list",
		SearchLinkSel: "h3 a",
		CleanPatterns: adPatterns,
	},
	"ttkan": {
		BaseURL:       "https://www.ttkan.co",
		BookPath:      "/novel/chapters/%s",
		ChapterPath:   "/novel/pagea/%s.html",
		TitleSel:      ".novel_info h1",
		AuthorSel:     ".novel_info li a",
		CoverSel:      ".novel_info amp-img",
		TOCSel:        ".full_chapters a",
		BodySel:       ".content",
		HeadingSel:    ".title h1",
		SearchPath:    "/novel/search?q=%s",
		SearchRowSel:  ".pure-g li",
		SearchLinkSel: "h3 a",
	},
	"zhenhunxiaoshuo": {
		BaseURL:     "https://www.zhenhunxiaoshuo.com",
		BookPath:    "/%s/",
		ChapterPath: "/%s.html",
		TitleSel:    ".focusbox h1.focusbox-title",
		AuthorSel:   ".focusbox .focusbox-text",
		TOCSel:      ".excerpts .excerpt a",
		BodySel:     ".article-content",
		HeadingSel:  "h1.article-title",
	},
}

// RegisterBuiltins registers a generic source for every builtin
// selector config.
func RegisterBuiltins(reg *Registry) error {
	for id, cfg := range builtinConfigs {
		src, err := NewCSS(id, cfg)
		if err != nil {
			return err
		}
		if err := reg.Register(src); err != nil {
			return err
		}
	}
	return nil
}
