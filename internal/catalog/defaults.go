package catalog

var defaultRecords = []FoodRecord{
	{
		Name:        "Prato de arroz branco com feijão preto",
		Calories:    320,
		Protein:     12,
		Carbs:       58,
		Fat:         4,
		Fiber:       9,
		Confidence:  92,
		Portion:     "1 prato médio (250g)",
		Ingredients: []string{"arroz branco", "feijão preto", "temperos"},
	},
	{
		Name:        "Frango grelhado com batata doce",
		Calories:    385,
		Protein:     35,
		Carbs:       28,
		Fat:         12,
		Fiber:       4,
		Confidence:  89,
		Portion:     "1 porção (200g)",
		Ingredients: []string{"peito de frango", "batata doce", "temperos", "azeite"},
	},
	{
		Name:        "Salada mista com peito de peru",
		Calories:    180,
		Protein:     22,
		Carbs:       8,
		Fat:         7,
		Fiber:       5,
		Confidence:  85,
		Portion:     "1 tigela grande (300g)",
		Ingredients: []string{"alface", "tomate", "pepino", "cenoura", "peito de peru", "azeite"},
	},
	{
		Name:        "Macarrão à bolonhesa",
		Calories:    520,
		Protein:     24,
		Carbs:       65,
		Fat:         18,
		Fiber:       4,
		Confidence:  91,
		Portion:     "1 prato (350g)",
		Ingredients: []string{"macarrão", "carne moída", "molho de tomate", "cebola", "alho"},
	},
	{
		Name:        "Peixe assado com legumes",
		Calories:    290,
		Protein:     32,
		Carbs:       15,
		Fat:         11,
		Fiber:       6,
		Confidence:  87,
		Portion:     "1 filé com acompanhamento (250g)",
		Ingredients: []string{"filé de peixe", "brócolis", "cenoura", "abobrinha", "azeite"},
	},
	{
		Name:        "Hambúrguer artesanal com batata frita",
		Calories:    680,
		Protein:     28,
		Carbs:       45,
		Fat:         42,
		Fiber:       3,
		Confidence:  94,
		Portion:     "1 hambúrguer completo (400g)",
		Ingredients: []string{"pão", "carne bovina", "queijo", "alface", "tomate", "batata", "óleo"},
	},
	{
		Name:        "Bowl de açaí com granola e frutas",
		Calories:    420,
		Protein:     8,
		Carbs:       72,
		Fat:         14,
		Fiber:       12,
		Confidence:  88,
		Portion:     "1 bowl médio (300g)",
		Ingredients: []string{"açaí", "granola", "banana", "morango", "mel", "coco ralado"},
	},
	{
		Name:        "Pizza margherita",
		Calories:    580,
		Protein:     22,
		Carbs:       68,
		Fat:         24,
		Fiber:       4,
		Confidence:  93,
		Portion:     "2 fatias médias (200g)",
		Ingredients: []string{"massa de pizza", "molho de tomate", "mussarela", "manjericão", "azeite"},
	},
	{
		Name:        "Sushi variado",
		Calories:    350,
		Protein:     18,
		Carbs:       48,
		Fat:         8,
		Fiber:       2,
		Confidence:  86,
		Portion:     "12 peças (180g)",
		Ingredients: []string{"arroz", "peixe cru", "alga nori", "wasabi", "gengibre", "shoyu"},
	},
	{
		Name:        "Smoothie verde com aveia",
		Calories:    240,
		Protein:     6,
		Carbs:       42,
		Fat:         5,
		Fiber:       8,
		Confidence:  82,
		Portion:     "1 copo grande (400ml)",
		Ingredients: []string{"espinafre", "banana", "maçã", "aveia", "leite vegetal", "mel"},
	},
}
