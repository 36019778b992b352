package board

import "github.com/mkehrer/monopoly-server/app/models"

var chanceCards = []models.Card{
	{ID: 1, Text: "Rücke vor bis auf Los", Action: models.CardMoveTo, Target: 0},
	{ID: 2, Text: "Rücke vor bis zur Chausseestraße", Action: models.CardMoveTo, Target: 8},
	{ID: 3, Text: "Rücke vor bis zum Opernplatz", Action: models.CardMoveTo, Target: 14},
	{ID: 4, Text: "Rücke vor bis zum nächsten Bahnhof", Action: models.CardMoveToNearest, TargetType: models.FieldRailroad},
	{ID: 5, Text: "Rücke vor bis zum nächsten Werk", Action: models.CardMoveToNearest, TargetType: models.FieldUtility},
	{ID: 6, Text: "Die Bank zahlt Ihnen 50 M", Action: models.CardReceiveMoney, Amount: 50},
	{ID: 7, Text: "Du erhältst einen Freibrief", Action: models.CardJailFreeCard},
	{ID: 8, Text: "Gehe 3 Felder zurück", Action: models.CardMoveRelative, Steps: -3},
	{ID: 9, Text: "Gehe ins Gefängnis", Action: models.CardGoToJail},
	{ID: 10, Text: "Zahle 15 M Strafe", Action: models.CardPayMoney, Amount: 15},
	{ID: 11, Text: "Zahle jedem Spieler 50 M", Action: models.CardPayAllPlayers, Amount: 50},
	{ID: 12, Text: "Du wirst zum Vorsitzenden des Aufsichtsrates gewählt - zahle jedem Spieler 50 M", Action: models.CardPayAllPlayers, Amount: 50},
	{ID: 13, Text: "Lasse alle deine Häuser reparieren - zahle 25 M je Haus und 100 M je Hotel", Action: models.CardRepairBuildings, HouseCost: 25, HotelCost: 100},
	{ID: 14, Text: "Gehe zum Südbahnhof", Action: models.CardMoveTo, Target: 25},
	{ID: 15, Text: "Du erbst 100 M", Action: models.CardReceiveMoney, Amount: 100},
	{ID: 16, Text: "Verkaufserlös einer Lebensversicherung - erhalte 100 M", Action: models.CardReceiveMoney, Amount: 100},
}

var communityCards = []models.Card{
	{ID: 1, Text: "Rücke vor bis auf Los", Action: models.CardMoveTo, Target: 0},
	{ID: 2, Text: "Die Bank zahlt dir einen Fehler aus - erhalte 200 M", Action: models.CardReceiveMoney, Amount: 200},
	{ID: 3, Text: "Arztkosten - zahle 50 M", Action: models.CardPayMoney, Amount: 50},
	{ID: 4, Text: "Erhalte 25 M Aktienertrag", Action: models.CardReceiveMoney, Amount: 25},
	{ID: 5, Text: "Du erhältst einen Freibrief", Action: models.CardJailFreeCard},
	{ID: 6, Text: "Gehe ins Gefängnis", Action: models.CardGoToJail},
	{ID: 7, Text: "Nachzahlung der Einkommensteuer - erhalte 20 M", Action: models.CardReceiveMoney, Amount: 20},
	{ID: 8, Text: "Du hast Geburtstag - jeder Spieler schenkt dir 10 M", Action: models.CardReceiveFromAll, Amount: 10},
	{ID: 9, Text: "Lebensversicherung wird fällig - erhalte 100 M", Action: models.CardReceiveMoney, Amount: 100},
	{ID: 10, Text: "Krankenhaus-Gebühren - zahle 100 M", Action: models.CardPayMoney, Amount: 100},
	{ID: 11, Text: "Schulgebühren - zahle 50 M", Action: models.CardPayMoney, Amount: 50},
	{ID: 12, Text: "Erhalte 100 M Beratungshonorar", Action: models.CardReceiveMoney, Amount: 100},
	{ID: 13, Text: "Du wirst zu Straßenausbesserungsarbeiten herangezogen - zahle 40 M je Haus und 115 M je Hotel", Action: models.CardRepairBuildings, HouseCost: 40, HotelCost: 115},
	{ID: 14, Text: "Du wirst Zweiter in einem Schönheitswettbewerb - erhalte 10 M", Action: models.CardReceiveMoney, Amount: 10},
	{ID: 15, Text: "Du erbst 100 M", Action: models.CardReceiveMoney, Amount: 100},
	{ID: 16, Text: "Verkaufserlös einer Lebensversicherung - erhalte 100 M", Action: models.CardReceiveMoney, Amount: 100},
}

// ChanceCards returns a fresh copy of the chance deck in catalog order.
func ChanceCards() []models.Card {
	out := make([]models.Card, len(chanceCards))
	copy(out, chanceCards)
	return out
}

// CommunityCards returns a fresh copy of the community deck in catalog order.
func CommunityCards() []models.Card {
	out := make([]models.Card, len(communityCards))
	copy(out, communityCards)
	return out
}
