package sites

// builtinSites is the compiled-in capability table. One row per site,
// kept flat and sorted so diffs stay reviewable. An overlay directory
// can extend or replace rows at startup (see Seeder).
var builtinSites = []Capabilities{
	{SiteID: "aaatxt", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "b520", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "biquge", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "biquyuedu", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "bxwx9", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "ciluke", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "ciweimao", Host: "www.ciweimao.com", Volumes: VolumesNative, Images: ImagesNative, Login: LoginRequired, Search: SearchInternal},
	{SiteID: "dxmwx", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "esjzone", Volumes: VolumesNative, Images: ImagesExternalOnly, Login: LoginOptional, Search: SearchInternal},
	{SiteID: "guidaye", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "hetushu", Volumes: VolumesNative, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "i25zw", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "ixdzs8", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "jpxs123", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "ktshu", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "laoyaoxs", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "lewenn", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "linovelib", Host: "www.linovelib.com", Volumes: VolumesNative, Images: ImagesNative, Login: LoginNone, Search: SearchNativeRedirect},
	{SiteID: "piaotia", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "qbtr", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "qidian", Host: "vipreader.qidian.com", Volumes: VolumesNative, Images: ImagesNative, Login: LoginRequired, Search: SearchInternal, RequiresDecryption: true},
	{SiteID: "quanben5", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "sfacg", Host: "www.sfacg.com", Volumes: VolumesNative, Images: ImagesNative, Login: LoginOptional, Search: SearchInternal},
	{SiteID: "shencou", Volumes: VolumesNative, Images: ImagesExternalOnly, Login: LoginNone, Search: SearchNone},
	{SiteID: "shu111", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "shuhaige", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "tongrenquan", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "trxs", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "ttkan", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "wanbengo", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "xiaoshuowu", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "xiguashuwu", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchInternal},
	{SiteID: "xshbook", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "yamibo", Volumes: VolumesNative, Images: ImagesExternalOnly, Login: LoginRequired, Search: SearchInternal},
	{SiteID: "yibige", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
	{SiteID: "zhenhunxiaoshuo", Volumes: VolumesNone, Images: ImagesNone, Login: LoginNone, Search: SearchNone},
}

// Defaults returns a copy of the builtin capability table, for seeding
// a registry with overlay records layered on top.
func Defaults() []Capabilities {
	out := make([]Capabilities, len(builtinSites))
	copy(out, builtinSites)
	return out
}
