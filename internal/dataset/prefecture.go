package dataset

type bounds struct {
	minLat, maxLat, minLng, maxLng float64
}

type prefectureBox struct {
	name string
	box  bounds
}

// Rough per-prefecture boxes. Boxes overlap; lookup order decides.
var prefectureBoxes = []prefectureBox{
	{"北海道", bounds{41.3, 45.6, 139.3, 145.9}},
	{"青森県", bounds{40.2, 41.6, 139.4, 141.7}},
	{"岩手県", bounds{38.7, 40.5, 140.6, 142.1}},
	{"宮城県", bounds{37.7, 39.0, 140.2, 141.7}},
	{"秋田県", bounds{39.0, 40.5, 139.7, 140.9}},
	{"山形県", bounds{37.7, 39.2, 139.5, 140.7}},
	{"福島県", bounds{36.8, 37.9, 139.1, 141.1}},
	{"茨城県", bounds{35.7, 36.9, 139.6, 140.9}},
	{"栃木県", bounds{36.2, 37.2, 139.3, 140.3}},
	{"群馬県", bounds{36.0, 37.1, 138.4, 139.7}},
	{"埼玉県", bounds{35.7, 36.3, 138.7, 139.9}},
	{"千葉県", bounds{34.9, 36.1, 139.7, 140.9}},
	{"東京都", bounds{35.5, 35.9, 138.9, 139.9}},
	{"神奈川県", bounds{35.1, 35.7, 138.9, 139.8}},
	{"新潟県", bounds{36.7, 38.6, 137.8, 140.0}},
	{"富山県", bounds{36.3, 36.9, 136.7, 137.8}},
	{"石川県", bounds{36.1, 37.9, 136.2, 137.4}},
	{"福井県", bounds{35.4, 36.3, 135.4, 136.8}},
	{"山梨県", bounds{35.2, 36.05, 138.1, 139.2}},
	{"長野県", bounds{35.2, 37.0, 137.3, 138.8}},
	{"岐阜県", bounds{35.1, 36.5, 136.3, 137.7}},
	{"静岡県", bounds{34.6, 35.6, 137.4, 139.2}},
	{"愛知県", bounds{34.5, 35.4, 136.6, 137.8}},
	{"三重県", bounds{33.7, 35.2, 135.8, 136.9}},
	{"滋賀県", bounds{34.8, 35.7, 135.7, 136.5}},
	{"京都府", bounds{34.8, 35.8, 134.8, 136.1}},
	{"大阪府", bounds{34.2, 35.0, 135.1, 135.8}},
	{"兵庫県", bounds{34.2, 35.7, 134.2, 135.5}},
	{"奈良県", bounds{33.8, 34.8, 135.5, 136.2}},
	{"和歌山県", bounds{33.4, 34.4, 135.0, 136.0}},
	{"鳥取県", bounds{35.0, 35.6, 133.1, 134.5}},
	{"島根県", bounds{34.3, 36.3, 131.6, 133.4}},
	{"岡山県", bounds{34.3, 35.3, 133.4, 134.5}},
	{"広島県", bounds{34.0, 35.1, 132.0, 133.5}},
	{"山口県", bounds{33.7, 34.8, 130.8, 132.2}},
	{"徳島県", bounds{33.7, 34.3, 133.5, 134.8}},
	{"香川県", bounds{34.0, 34.5, 133.5, 134.5}},
	{"愛媛県", bounds{32.9, 34.1, 132.0, 133.7}},
	{"高知県", bounds{32.7, 33.9, 132.4, 134.3}},
	{"福岡県", bounds{33.0, 34.0, 130.0, 131.2}},
	{"佐賀県", bounds{32.9, 33.6, 129.7, 130.5}},
	{"長崎県", bounds{32.5, 34.7, 128.6, 130.4}},
	{"熊本県", bounds{32.0, 33.2, 130.1, 131.3}},
	{"大分県", bounds{32.7, 33.8, 130.8, 132.1}},
	{"宮崎県", bounds{31.3, 32.9, 130.6, 131.9}},
	{"鹿児島県", bounds{27.0, 32.3, 128.4, 131.2}},
	{"沖縄県", bounds{24.0, 27.9, 122.9, 131.3}},
}

// PrefectureFromCoords returns the first prefecture whose box contains the
// point, or "" when none does. This is a fallback, not geocoding.
func PrefectureFromCoords(lat, lng float64) string {
	for _, p := range prefectureBoxes {
		b := p.box
		if lat >= b.minLat && lat <= b.maxLat && lng >= b.minLng && lng <= b.maxLng {
			return p.name
		}
	}
	return ""
}

// Prefectures lists all prefecture names in the standard north-to-south order
func Prefectures() []string {
	out := make([]string, len(prefectureBoxes))
	for i, p := range prefectureBoxes {
		out[i] = p.name
	}
	return out
}

// Region is an area grouping of prefectures used by the area filter
type Region struct {
	Name        string   `json:"name"`
	Prefectures []string `json:"prefectures"`
}

var regions = []Region{
	{Name: "北海道", Prefectures: []string{"北海道"}},
	{Name: "東北", Prefectures: []string{"青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県"}},
	{Name: "関東", Prefectures: []string{"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県"}},
	{Name: "中部", Prefectures: []string{"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県", "岐阜県", "静岡県", "愛知県"}},
	{Name: "近畿", Prefectures: []string{"三重県", "滋賀県", "京都府", "大阪府", "兵庫県", "奈良県", "和歌山県"}},
	{Name: "中国", Prefectures: []string{"鳥取県", "島根県", "岡山県", "広島県", "山口県"}},
	{Name: "四国", Prefectures: []string{"徳島県", "香川県", "愛媛県", "高知県"}},
	{Name: "九州", Prefectures: []string{"福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県"}},
}

// Regions returns a copy of the area groups
func Regions() []Region {
	out := make([]Region, len(regions))
	for i, r := range regions {
		out[i] = Region{Name: r.Name, Prefectures: append([]string(nil), r.Prefectures...)}
	}
	return out
}

// FindRegion looks up an area group by name
func FindRegion(name string) (Region, bool) {
	for _, r := range Regions() {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// RegionOf returns the area group containing prefecture, or ""
func RegionOf(prefecture string) string {
	for _, r := range regions {
		for _, p := range r.Prefectures {
			if p == prefecture {
				return r.Name
			}
		}
	}
	return ""
}
