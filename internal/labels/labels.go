// Package labels holds the ordered category names a classifier predicts.
// The index of a label is the index of the matching model output.
package labels

// Games is the built-in label set: the game titles the bundled classifier
// was trained on, in training order.
var Games = []string{
	"anthem",
	"apex_legends",
	"borderlands_3",
	"call_of_duty_modern_warfare_2019",
	"civilization_6",
	"days_gone",
	"destiny_2",
	"dota_2",
	"fifa_20",
	"fortnite",
	"grand_theft_auto_v",
	"hearthstone",
	"kingdom_hearts_iii",
	"league_of_legends",
	"luigi’s_mansion_3",
	"madden_nfl_20",
	"mario_kart_8",
	"minecraft",
	"monster_hunter_world",
	"mortal_kombat_11",
	"nba_2k20",
	"new_super_mario_bros_u_deluxe",
	"playerunknown’s_battlegrounds",
	"rainbow_six_siege",
	"red_dead_redemption_ii",
	"resident_evil_2_2019",
	"sekiro_shadows_die_twice",
	"star_wars_jedi_fallen_order",
	"super_smash_bros_ultimate",
	"the_elder_scrolls_online",
	"the_outer_worlds",
	"tom_clancy_the_division_2",
	"total_war_three_kingdoms",
	"untitled_goose_game",
	"warframe",
}

// Default returns a copy of the built-in label set.
func Default() []string {
	return append([]string(nil), Games...)
}
