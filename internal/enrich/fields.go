package enrich

// Fields is the ordered set of columns a registry hit fills in. The same
// list extends the output schema, so the two cannot drift apart.
var Fields = []string{
	"vri_id", "org_title", "mit_number", "mit_title", "mit_notation",
	"mi_modification", "mi_number", "verification_date", "valid_date",
	"result_docnum", "sticker_num", "applicability",
}
