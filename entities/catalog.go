package entities

// Choices offered by the prediction form and the crop explorer.
var (
	CropTypes = []string{
		"Wheat", "Maize (Corn)", "Rice", "Soybeans", "Potatoes",
		"Cotton", "Sugarcane", "Barley", "Sorghum", "Tomatoes",
	}
	SoilTypes = []string{
		"Loamy", "Clay", "Sandy", "Silty", "Peaty", "Chalky", "Saline",
	}
	FertilizerTypes = []string{
		"Nitrogen-based", "Phosphorus-based", "Potassium-based", "Organic Compost", "NPK Blend", "None",
	}
)
