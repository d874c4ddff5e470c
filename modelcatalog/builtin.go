package modelcatalog

import "sync"

// DefaultCheckpoint is the model used when nothing else selects one.
const DefaultCheckpoint = "sd_xl_base_1.0.safetensors"

var sdxlClass = []ModelFamily{FamilySDXL, FamilyIllustrious, FamilyPony, FamilyRealistic}

// BuiltinCheckpoints returns the shipped checkpoint rows.
func BuiltinCheckpoints() []CheckpointEntry {
	return []CheckpointEntry{
		{Filename: DefaultCheckpoint, Name: "SDXL Base 1.0", Family: FamilySDXL, CompatibleFamilies: FamilySDXL.CompatibleWith(), Description: "General purpose SDXL base model"},
		{Filename: "animagineXLV31.safetensors", Name: "Animagine XL 3.1", Family: FamilySDXL, CompatibleFamilies: FamilySDXL.CompatibleWith(), Description: "Anime-leaning SDXL fine-tune"},
		{Filename: "illustriousXL_v01.safetensors", Name: "Illustrious XL 0.1", Family: FamilyIllustrious, CompatibleFamilies: FamilyIllustrious.CompatibleWith(), Description: "Illustration and manga"},
		{Filename: "noobaiXL_vPred10.safetensors", Name: "NoobAI XL V-Pred 1.0", Family: FamilyIllustrious, CompatibleFamilies: FamilyIllustrious.CompatibleWith(), Description: "Illustrious derivative, v-prediction"},
		{Filename: "ponyDiffusionV6XL.safetensors", Name: "Pony Diffusion V6 XL", Family: FamilyPony, CompatibleFamilies: FamilyPony.CompatibleWith(), Description: "Stylised characters, score tags"},
		{Filename: "juggernautXL_v9.safetensors", Name: "Juggernaut XL 9", Family: FamilyRealistic, CompatibleFamilies: FamilyRealistic.CompatibleWith(), Description: "Photoreal SDXL"},
		{Filename: "realvisxlV50.safetensors", Name: "RealVisXL 5.0", Family: FamilyRealistic, CompatibleFamilies: FamilyRealistic.CompatibleWith(), Description: "Photoreal SDXL"},
		{Filename: "flux1-dev-fp8.safetensors", Name: "Flux.1 Dev (fp8)", Family: FamilyFlux, CompatibleFamilies: FamilyFlux.CompatibleWith(), Description: "Flux.1 dev, strong prompt adherence"},
		{Filename: "v1-5-pruned-emaonly.safetensors", Name: "Stable Diffusion 1.5", Family: FamilySD15, CompatibleFamilies: FamilySD15.CompatibleWith(), Description: "Fast drafts"},
	}
}

// BuiltinAdapters returns the shipped LoRA rows.
func BuiltinAdapters() []AdapterEntry {
	return []AdapterEntry{
		{
			Filename: "character_sheet_xl.safetensors", Name: "Character Sheet XL",
			Family: FamilySDXL, CompatibleFamilies: []ModelFamily{FamilySDXL, FamilyIllustrious, FamilyPony},
			Category: CategoryCharacter, StackPosition: PositionFirst,
			Strength:     StrengthRange{Min: 0.5, Recommended: 0.8, Max: 1.0},
			TriggerWords: "character sheet, multiple views",
		},
		{
			Filename: "consistent_face_il.safetensors", Name: "Consistent Face (Illustrious)",
			Family: FamilyIllustrious, CompatibleFamilies: []ModelFamily{FamilyIllustrious},
			Category: CategoryCharacter, StackPosition: PositionFirst,
			Strength:     StrengthRange{Min: 0.4, Recommended: 0.7, Max: 0.9},
			TriggerWords: "consistent face",
		},
		{
			Filename: "dynamic_pose_xl.safetensors", Name: "Dynamic Pose XL",
			Family: FamilySDXL, CompatibleFamilies: sdxlClass,
			Category: CategoryPose, StackPosition: PositionFirst,
			Strength:     StrengthRange{Min: 0.3, Recommended: 0.6, Max: 0.9},
			TriggerWords: "dynamic pose",
		},
		{
			Filename: "comic_ink_style_xl.safetensors", Name: "Comic Ink Style XL",
			Family: FamilySDXL, CompatibleFamilies: []ModelFamily{FamilySDXL, FamilyIllustrious, FamilyPony},
			Category: CategoryStyle, StackPosition: PositionMiddle,
			Strength:     StrengthRange{Min: 0.4, Recommended: 0.7, Max: 1.0},
			TriggerWords: "comic ink style",
			UseCases:     []UseCase{UseCaseComic},
		},
		{
			Filename: "manga_screentone_il.safetensors", Name: "Manga Screentone (Illustrious)",
			Family: FamilyIllustrious, CompatibleFamilies: []ModelFamily{FamilyIllustrious},
			Category: CategoryStyle, StackPosition: PositionMiddle,
			Strength:     StrengthRange{Min: 0.5, Recommended: 0.8, Max: 1.0},
			TriggerWords: "screentone, monochrome manga",
			UseCases:     []UseCase{UseCaseAnime, UseCaseComic},
		},
		{
			Filename: "anime_cel_shade_il.safetensors", Name: "Anime Cel Shade",
			Family: FamilyIllustrious, CompatibleFamilies: []ModelFamily{FamilyIllustrious, FamilySDXL},
			Category: CategoryStyle, StackPosition: PositionMiddle,
			Strength:     StrengthRange{Min: 0.3, Recommended: 0.6, Max: 0.9},
			TriggerWords: "cel shading",
			UseCases:     []UseCase{UseCaseAnime},
		},
		{
			Filename: "cinematic_photo_xl.safetensors", Name: "Cinematic Photo XL",
			Family: FamilyRealistic, CompatibleFamilies: []ModelFamily{FamilyRealistic, FamilySDXL},
			Category: CategoryStyle, StackPosition: PositionMiddle,
			Strength:     StrengthRange{Min: 0.3, Recommended: 0.6, Max: 0.8},
			TriggerWords: "cinematic photo",
			UseCases:     []UseCase{UseCaseRealistic},
		},
		{
			Filename: "pony_comic_style.safetensors", Name: "Pony Comic Style",
			Family: FamilyPony, CompatibleFamilies: []ModelFamily{FamilyPony},
			Category: CategoryStyle, StackPosition: PositionMiddle,
			Strength:     StrengthRange{Min: 0.5, Recommended: 0.8, Max: 1.0},
			TriggerWords: "comic style, score_9",
			UseCases:     []UseCase{UseCaseComic},
		},
		{
			Filename: "speedlines_concept_xl.safetensors", Name: "Speed Lines",
			Family: FamilySDXL, CompatibleFamilies: []ModelFamily{FamilySDXL, FamilyIllustrious},
			Category: CategoryConcept, StackPosition: PositionMiddle,
			Strength:     StrengthRange{Min: 0.3, Recommended: 0.5, Max: 0.8},
			TriggerWords: "speed lines",
		},
		{
			Filename: "detail_tweaker_xl.safetensors", Name: "Detail Tweaker XL",
			Family: FamilySDXL, CompatibleFamilies: sdxlClass,
			Category: CategoryQuality, StackPosition: PositionLast,
			Strength: StrengthRange{Min: 0.2, Recommended: 0.5, Max: 1.0},
		},
		{
			Filename: "lineart_clean_sd15.safetensors", Name: "Clean Lineart (1.5)",
			Family: FamilySD15, CompatibleFamilies: []ModelFamily{FamilySD15},
			Category: CategoryStyle, StackPosition: PositionMiddle,
			Strength:     StrengthRange{Min: 0.4, Recommended: 0.7, Max: 1.0},
			TriggerWords: "clean lineart",
			UseCases:     []UseCase{UseCaseComic, UseCaseAnime},
		},
		{
			Filename: "realistic_skin_sd15.safetensors", Name: "Realistic Skin (1.5)",
			Family: FamilySD15, CompatibleFamilies: []ModelFamily{FamilySD15},
			Category: CategoryStyle, StackPosition: PositionMiddle,
			Strength:     StrengthRange{Min: 0.3, Recommended: 0.6, Max: 0.9},
			TriggerWords: "detailed skin",
			UseCases:     []UseCase{UseCaseRealistic},
		},
		{
			Filename: "add_detail_sd15.safetensors", Name: "Add Detail (1.5)",
			Family: FamilySD15, CompatibleFamilies: []ModelFamily{FamilySD15},
			Category: CategoryQuality, StackPosition: PositionLast,
			Strength: StrengthRange{Min: 0.2, Recommended: 0.5, Max: 1.0},
		},
		{
			Filename: "flux_comic_style.safetensors", Name: "Flux Comic Style",
			Family: FamilyFlux, CompatibleFamilies: []ModelFamily{FamilyFlux},
			Category: CategoryStyle, StackPosition: PositionMiddle,
			Strength:     StrengthRange{Min: 0.5, Recommended: 0.8, Max: 1.2},
			TriggerWords: "flux comic",
			UseCases:     []UseCase{UseCaseComic},
		},
		{
			Filename: "flux_realism_lora.safetensors", Name: "Flux Realism",
			Family: FamilyFlux, CompatibleFamilies: []ModelFamily{FamilyFlux},
			Category: CategoryStyle, StackPosition: PositionMiddle,
			Strength:     StrengthRange{Min: 0.4, Recommended: 0.8, Max: 1.0},
			TriggerWords: "realistic photo",
			UseCases:     []UseCase{UseCaseRealistic},
		},
		{
			Filename: "flux_detailer.safetensors", Name: "Flux Detailer",
			Family: FamilyFlux, CompatibleFamilies: []ModelFamily{FamilyFlux},
			Category: CategoryQuality, StackPosition: PositionLast,
			Strength: StrengthRange{Min: 0.3, Recommended: 0.6, Max: 1.0},
		},
	}
}

// BuiltinConditioners returns the shipped ControlNet rows.
func BuiltinConditioners() []ConditionerEntry {
	sd15 := []ModelFamily{FamilySD15}
	flux := []ModelFamily{FamilyFlux}
	return []ConditionerEntry{
		{Filename: "control_v11p_sd15_openpose.pth", Name: "OpenPose 1.5", ConditionType: ConditionPose, Family: FamilySD15, CompatibleFamilies: sd15},
		{Filename: "control_v11p_sd15_canny.pth", Name: "Canny 1.5", ConditionType: ConditionCanny, Family: FamilySD15, CompatibleFamilies: sd15},
		{Filename: "control_v11f1p_sd15_depth.pth", Name: "Depth 1.5", ConditionType: ConditionDepth, Family: FamilySD15, CompatibleFamilies: sd15},
		{Filename: "control_v11p_sd15_lineart.pth", Name: "Lineart 1.5", ConditionType: ConditionLineart, Family: FamilySD15, CompatibleFamilies: sd15},
		{Filename: "control_v11p_sd15_scribble.pth", Name: "Scribble 1.5", ConditionType: ConditionScribble, Family: FamilySD15, CompatibleFamilies: sd15},
		{Filename: "control_v11p_sd15_softedge.pth", Name: "SoftEdge 1.5", ConditionType: ConditionSoftEdge, Family: FamilySD15, CompatibleFamilies: sd15},
		{Filename: "control_v11p_sd15_normalbae.pth", Name: "Normal 1.5", ConditionType: ConditionNormal, Family: FamilySD15, CompatibleFamilies: sd15},
		{Filename: "control_v11p_sd15_seg.pth", Name: "Segmentation 1.5", ConditionType: ConditionSegmentation, Family: FamilySD15, CompatibleFamilies: sd15},
		{Filename: "control_v11p_sd15_mlsd.pth", Name: "MLSD 1.5", ConditionType: ConditionMLSD, Family: FamilySD15, CompatibleFamilies: sd15},
		{Filename: "control_v11f1e_sd15_tile.pth", Name: "Tile 1.5", ConditionType: ConditionTile, Family: FamilySD15, CompatibleFamilies: sd15},
		{Filename: "controlnet-openpose-sdxl-1.0.safetensors", Name: "OpenPose XL", ConditionType: ConditionPose, Family: FamilySDXL, CompatibleFamilies: sdxlClass},
		{Filename: "controlnet-canny-sdxl-1.0.safetensors", Name: "Canny XL", ConditionType: ConditionCanny, Family: FamilySDXL, CompatibleFamilies: sdxlClass},
		{Filename: "controlnet-depth-sdxl-1.0.safetensors", Name: "Depth XL", ConditionType: ConditionDepth, Family: FamilySDXL, CompatibleFamilies: sdxlClass},
		{Filename: "controlnet-lineart-anime-sdxl.safetensors", Name: "Lineart Anime XL", ConditionType: ConditionLineart, Family: FamilyIllustrious, CompatibleFamilies: []ModelFamily{FamilyIllustrious, FamilySDXL, FamilyPony}},
		{Filename: "controlnet-scribble-sdxl-1.0.safetensors", Name: "Scribble XL", ConditionType: ConditionScribble, Family: FamilySDXL, CompatibleFamilies: sdxlClass},
		{Filename: "flux-controlnet-canny-v3.safetensors", Name: "Flux Canny", ConditionType: ConditionCanny, Family: FamilyFlux, CompatibleFamilies: flux},
		{Filename: "flux-controlnet-depth-v3.safetensors", Name: "Flux Depth", ConditionType: ConditionDepth, Family: FamilyFlux, CompatibleFamilies: flux},
		{Filename: "flux-controlnet-union-pro.safetensors", Name: "Flux Union (pose)", ConditionType: ConditionPose, Family: FamilyFlux, CompatibleFamilies: flux},
	}
}

var builtinOnce = sync.OnceValue(func() *Catalog {
	c, err := New(BuiltinCheckpoints(), BuiltinAdapters(), BuiltinConditioners())
	if err != nil {
		panic("modelcatalog: built-in tables are invalid: " + err.Error())
	}
	return c
})

// Builtin returns the catalog built from the shipped tables.
func Builtin() *Catalog {
	return builtinOnce()
}
