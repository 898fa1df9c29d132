package catalog

// FoodRecord is one dish in the catalog. Nutrients are for the stated portion.
type FoodRecord struct {
	Name        string   `json:"food"`
	Calories    int      `json:"calories"`
	Protein     int      `json:"protein"`
	Carbs       int      `json:"carbs"`
	Fat         int      `json:"fat"`
	Fiber       int      `json:"fiber"`
	Confidence  int      `json:"confidence"`
	Portion     string   `json:"portion"`
	Ingredients []string `json:"ingredients"`
}

// Clone returns a deep copy of the record.
func (r FoodRecord) Clone() FoodRecord {
	out := r
	if r.Ingredients != nil {
		out.Ingredients = append([]string(nil), r.Ingredients...)
	}
	return out
}
