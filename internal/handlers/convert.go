package handlers

import (
	"bakery-service/internal/dto"
	"bakery-service/internal/models"
	"bakery-service/internal/service"
)

func toLineResults(in []service.LineResult) []dto.LineResult {
	out := make([]dto.LineResult, len(in))
	for i, r := range in {
		out[i] = dto.LineResult{
			LineID:      r.LineID,
			Cake:        r.Cake,
			Weight:      r.Weight,
			PriceCents:  r.PriceCents,
			Quantity:    r.Quantity,
			State:       string(r.State),
			FactoryID:   r.FactoryID,
			FactoryName: r.FactoryName,
			Error:       r.Error,
		}
	}
	return out
}

func toMainOrder(v service.MainOrderView) dto.MainOrder {
	lines := make([]dto.OrderLine, len(v.Lines))
	for i := range v.Lines {
		l := &v.Lines[i]
		lines[i] = dto.OrderLine{
			ID:          l.ID,
			MainOrderID: l.MainOrderID,
			CakeName:    l.CakeName,
			Weight:      l.Weight,
			PriceCents:  l.PriceCents,
			Quantity:    l.Quantity,
			TotalCents:  l.TotalCents(),
			State:       string(l.State),
			FactoryID:   l.AssignedFactory,
			UpdatedAt:   l.UpdatedAt,
		}
	}
	return dto.MainOrder{
		ID:        v.ID,
		PlacedBy:  v.PlacedBy,
		Status:    string(v.Status),
		CreatedAt: v.CreatedAt,
		Lines:     lines,
	}
}

func toTransition(r *service.TransitionResult) dto.TransitionResponse {
	return dto.TransitionResponse{ID: r.ID, MainOrderID: r.MainOrderID, State: string(r.State), Quantity: r.Quantity}
}

func toDesignerOrder(v service.DesignerOrderView) dto.DesignerOrder {
	return dto.DesignerOrder{
		ID:               v.ID,
		PlacedBy:         v.PlacedBy,
		FactoryID:        v.FactoryID,
		Theme:            v.Theme,
		MessageOnCake:    v.MessageOnCake,
		Weight:           v.Weight,
		PriceCents:       v.PriceCents,
		Quantity:         v.Quantity,
		DesignImage:      v.DesignImage,
		PrintImage:       v.PrintImage,
		AudioInstruction: v.AudioInstruction,
		State:            string(v.State),
		CreatedAt:        v.CreatedAt,
	}
}

func toCake(c models.Cake) dto.Cake {
	return dto.Cake{ID: c.ID, Name: c.Name, Weight: c.Weight, PriceCents: c.PriceCents}
}

func toActors(in []models.Actor) []dto.Actor {
	out := make([]dto.Actor, len(in))
	for i, a := range in {
		out[i] = dto.Actor{ID: a.ID, Name: a.Name, Role: string(a.Role), Phone: a.Phone, Email: a.Email, Address: a.Address}
	}
	return out
}
